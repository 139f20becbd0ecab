package bridge

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/comix-bridge/internal/archive"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// request is an entry point's raw input. Fields are validated in declaration
// order and the first violation is reported.
type request interface {
	message(field string) string
}

type cancelRequest struct {
	Handle uuid.UUID `validate:"required"`
}

func (cancelRequest) message(string) string { return "Task cannot be null" }

type descriptorRequest struct {
	FD int `validate:"gte=0"`
}

func (descriptorRequest) message(string) string { return "File descriptor is negative" }

type metadataRequest struct {
	FD       int                  `validate:"gte=0"`
	Callback Callback[*ComicBook] `validate:"required"`
	FilePath string               `validate:"required"`
	Name     string               `validate:"required"`
}

func (metadataRequest) message(field string) string {
	switch field {
	case "FD":
		return "File descriptor is negative"
	case "Callback":
		return "Callback cannot be null"
	case "FilePath":
		return "File path cannot be null"
	default:
		return "Comic book name cannot be null"
	}
}

type imageRequest struct {
	FD       int                      `validate:"gte=0"`
	Callback Callback[*archive.Image] `validate:"required"`
	Position int64                    `validate:"gte=0"`
}

func (imageRequest) message(field string) string {
	switch field {
	case "FD":
		return "File descriptor is negative"
	case "Callback":
		return "Callback cannot be null"
	default:
		return "Image position can't be negative"
	}
}

type thumbnailRequest struct {
	FD       int                      `validate:"gte=0"`
	Callback Callback[*archive.Image] `validate:"required"`
	Position int64                    `validate:"gte=0"`
	Width    int                      `validate:"gte=0"`
	Height   int                      `validate:"gte=0"`
}

func (r thumbnailRequest) message(field string) string {
	switch field {
	case "FD":
		return "File descriptor is negative"
	case "Callback":
		return "Callback cannot be null"
	case "Position":
		return "Image position can't be negative"
	default:
		return fmt.Sprintf("Width and height cannot be negative. Width %d, height %d", r.Width, r.Height)
	}
}

func check(req request) *Error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return illegalArgument(req.message(verrs[0].Field()))
	}
	return illegalArgument(err.Error())
}
