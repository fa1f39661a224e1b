package i

// Logger is the leveled logger handed to every subsystem.
type Logger interface {
	Info(string)
	Warning(string)
	Error(string)
}
