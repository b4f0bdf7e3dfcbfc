package eventloop

// Config holds the configuration for the event loop
type Config struct {
	Buffer int `env:"EVENTLOOP_BUFFER" envDefault:"256"`
}
