// Package assistant interprets text commands against a contact book.
package assistant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smileynet/toolbox/internal/contacts"
	"github.com/smileynet/toolbox/internal/logger"
)

// User-facing messages.
const (
	MsgWelcome        = "Welcome to the assistant bot!"
	MsgPrompt         = "Enter a command: "
	MsgGreeting       = "How can I help you?"
	MsgFarewell       = "Good bye!"
	MsgInvalidCommand = "Invalid command."
	MsgAdded          = "Contact added."
	MsgExists         = "Contact already exists"
	MsgUpdated        = "Contact updated."
	MsgNotFound       = "Contact not found."
	MsgInvalidContact = "Contact invalid"
	MsgNoContacts     = "No contacts saved."
	MsgAddUsage       = "Insufficient information to add contact."
	MsgChangeUsage    = "Insufficient information to change contact."
	MsgPhoneUsage     = "There is not enough information to display the number."
)

// Reply is the outcome of one command line.
type Reply struct {
	Lines []string
	Quit  bool
}

// ParseInput splits line on whitespace into a lower-cased command and its
// arguments. A blank line yields an empty command.
func ParseInput(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// Dispatcher routes commands to the contact book it owns.
type Dispatcher struct {
	book *contacts.Book
}

// NewDispatcher creates a Dispatcher over book.
func NewDispatcher(book *contacts.Book) *Dispatcher {
	return &Dispatcher{book: book}
}

// Book returns the dispatcher's contact book.
func (d *Dispatcher) Book() *contacts.Book {
	return d.book
}

// Handle interprets one line of input.
func (d *Dispatcher) Handle(line string) Reply {
	cmd, args := ParseInput(line)
	logger.L().Debug("assistant.dispatch",
		"command", cmd,
		"args", len(args),
		"contacts", d.book.Len(),
		"permissive", d.book.Permissive(),
	)

	switch cmd {
	case "":
		return Reply{}
	case "close", "exit":
		return Reply{Lines: []string{MsgFarewell}, Quit: true}
	case "add":
		if len(args) != 2 {
			return say(MsgAddUsage)
		}
		res, err := d.book.Add(contacts.Contact{Name: args[0], Phone: args[1]})
		return mutationReply(res, err, MsgAdded)
	case "change":
		if len(args) != 2 {
			return say(MsgChangeUsage)
		}
		res, err := d.book.Change(contacts.Contact{Name: args[0], Phone: args[1]})
		return mutationReply(res, err, MsgUpdated)
	case "phone":
		if len(args) != 1 {
			return say(MsgPhoneUsage)
		}
		phone, err := d.book.Phone(args[0])
		if err != nil {
			return say(MsgNotFound)
		}
		return say(fmt.Sprintf("Phone number for %s: %s", args[0], phone))
	case "all":
		if len(args) != 0 {
			return say(MsgInvalidCommand)
		}
		return d.listAll()
	case "hello":
		return say(MsgGreeting)
	default:
		return say(MsgInvalidCommand)
	}
}

func (d *Dispatcher) listAll() Reply {
	all := d.book.All()
	if len(all) == 0 {
		return say(MsgNoContacts)
	}
	lines := make([]string, len(all))
	for i, c := range all {
		lines[i] = fmt.Sprintf("name: %s phone: %s", c.Name, c.Phone)
	}
	return Reply{Lines: lines}
}

// mutationReply renders the result of Add or Change. Validation failures are
// shown before the outcome; in strict mode they are the whole reply.
func mutationReply(res contacts.Result, err error, success string) Reply {
	var lines []string
	switch {
	case contacts.IsValidation(err):
		return Reply{Lines: []string{validationMessage(err), MsgInvalidContact}}
	case res.Invalid():
		lines = append(lines, validationMessage(res.Problem), MsgInvalidContact)
	}

	switch {
	case err == nil:
		lines = append(lines, success)
	case errors.Is(err, contacts.ErrExists):
		lines = append(lines, MsgExists)
	case errors.Is(err, contacts.ErrNotFound):
		lines = append(lines, MsgNotFound)
	default:
		lines = append(lines, "Error: "+err.Error())
	}
	return Reply{Lines: lines}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, contacts.ErrRequired):
		return "Error: Name and phone are required."
	case errors.Is(err, contacts.ErrEmptyName):
		return "Error: Name should be a non-empty string."
	case errors.Is(err, contacts.ErrPhoneFormat):
		return "Error: Phone number must be 10 digits."
	default:
		return "Error: " + err.Error()
	}
}

func say(line string) Reply {
	return Reply{Lines: []string{line}}
}
