package apperr

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaErrorNamesMissingColumns(t *testing.T) {
	err := &SchemaError{Missing: []string{"Time", "Engine speed"}}

	assert.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), `"Time"`)
	assert.Contains(t, err.Error(), `"Engine speed"`)
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"schema", &SchemaError{Missing: []string{"Time"}}, ErrSchema},
		{"file type", &InvalidFileTypeError{Path: "log.txt", Ext: ".txt"}, ErrInvalidFileType},
		{"io", IO("open", "x.csv", os.ErrNotExist), ErrIO},
		{"render", Render("plot", errors.New("boom")), ErrRender},
		{"empty", ErrEmptyInput, ErrEmptyInput},
		{"other", errors.New("boom"), ErrUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestIOKeepsCause(t *testing.T) {
	err := IO("open", "missing.csv", os.ErrNotExist)

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.csv")
}
