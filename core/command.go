package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultMaxArgs is the argument limit used when the configuration
	// doesn't supply one.
	DefaultMaxArgs = 64

	// delimiters separate tokens on an input line.
	delimiters = " \t\r\n\a"
)

// ErrTooManyArgs is returned by ParseLine when a line holds more tokens than
// the configured maximum.
var ErrTooManyArgs = errors.New("too many arguments")

// Command is one parsed invocation: a program or builtin name plus its
// argument vector.
type Command struct {
	// Name is the first token of the line.
	Name string
	// Args holds every token in order, Args[0] is always Name.
	Args []string
}

// Argc reports the number of populated argument slots, counting Name.
func (c *Command) Argc() int {
	return len(c.Args)
}

func (c *Command) String() string {
	return strings.Join(c.Args, " ")
}

// ParseLine splits a raw input line into a Command.
//
// Tokens are maximal runs of non-delimiter characters, produced left to
// right with no quoting or escaping. A blank or all-delimiter line yields
// (nil, nil) rather than a Command with an empty name. Exceeding maxArgs
// yields ErrTooManyArgs and no partial Command.
//
// A fresh Command is built on every call so a parse can never observe a
// previous line's tokens.
func ParseLine(line string, maxArgs int) (*Command, error) {
	if maxArgs <= 0 {
		maxArgs = DefaultMaxArgs
	}

	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return strings.ContainsRune(delimiters, r)
	})

	if len(tokens) == 0 {
		return nil, nil
	}
	if len(tokens) > maxArgs {
		return nil, fmt.Errorf("%w (max %d)", ErrTooManyArgs, maxArgs)
	}

	return &Command{
		Name: tokens[0],
		Args: tokens,
	}, nil
}
