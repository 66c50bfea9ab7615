// Package channel defines the transport-neutral message contract between the
// chat platform adapter and the routing core.
package channel

// Identity describes the sender of an inbound event.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Contact is a phone-book payload attached to a message: either the sender's
// own shared number or another user's card picked by an admin.
type Contact struct {
	PhoneNumber string
	FirstName   string
	LastName    string
	UserID      int64
}

// Message is one inbound chat message.
type Message struct {
	ChatID  int64
	From    Identity
	Text    string
	Contact *Contact
}

// Callback is an inline-button press. Data carries the opaque payload the
// button was created with.
type Callback struct {
	ID   string
	From Identity
	Data string
}
