package web

// Config is the chat server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g. ":8090").
	ListenAddr string
}
