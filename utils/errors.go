package utils

import "github.com/pkg/errors"

var ErrInitialization = errors.New("initialization failed")
var ErrInvalid = errors.New("invalid input")
var ErrNotFound = errors.New("not found")
var ErrUnsupported = errors.New("unsupported")

func NewError(source error, args ...interface{}) error {
	if len(args) == 0 {
		return source
	}

	s, _ := args[0].(string)
	err, _ := args[0].(error)

	switch {
	case s != "":
		return errors.Wrapf(source, s, args[1:]...)

	case err != nil:
		return errors.Wrap(source, err.Error())

	default:
		return source
	}
}

func NewInitializationError(args ...interface{}) error { return NewError(ErrInitialization, args...) }
func NewInvalidError(args ...interface{}) error        { return NewError(ErrInvalid, args...) }
func NewNotFoundError(args ...interface{}) error       { return NewError(ErrNotFound, args...) }
func NewUnsupportedError(args ...interface{}) error    { return NewError(ErrUnsupported, args...) }
