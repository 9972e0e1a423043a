package broker

type Message interface {
	ID() string
	Body() string
	Ack() error
}
