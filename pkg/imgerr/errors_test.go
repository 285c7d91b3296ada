package imgerr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	tests := []struct {
		err        error
		target     error
		validation bool
	}{
		{Validation("width", "x", "bad"), ErrValidation, true},
		{InvalidQuality(101), ErrInvalidQuality, true},
		{InvalidMethod("stretch"), ErrInvalidMethod, true},
		{InvalidBoolean("overwrite", 2), ErrInvalidBoolean, true},
		{UnknownOption([]string{"a"}), ErrUnknownOption, false},
		{IncompleteConfiguration([]string{"width"}), ErrIncompleteConfiguration, false},
		{FileExists("/out/a.jpg"), ErrFileExists, false},
		{UnsupportedFormat("/in", "text/plain", nil), ErrUnsupportedFormat, false},
		{UnsupportedOutputFormat("a.png", "jpg"), ErrUnsupportedOutputFormat, false},
		{NoEncoder("bmp"), ErrUnsupportedOutputFormat, false},
		{IO("write", "/out", fs.ErrPermission), ErrIO, false},
	}

	for _, tt := range tests {
		assert.True(t, errors.Is(tt.err, tt.target), "%v", tt.err)
		assert.Equal(t, tt.validation, errors.Is(tt.err, ErrValidation), "%v", tt.err)
	}
}

func TestIOWrapping(t *testing.T) {
	assert.NoError(t, IO("read", "/x", nil))

	err := IO("read", "/x", fs.ErrNotExist)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, "read /x: file does not exist", err.Error())

	typed := FileExists("/out")
	assert.Same(t, typed, IO("write", "/other", typed))

	wrapped := fmt.Errorf("outer: %w", typed)
	assert.Equal(t, wrapped, IO("write", "/other", wrapped))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "cannot process, required properties (input_path, width, height) not set",
		IncompleteConfiguration([]string{"input_path", "width", "height"}).Error())
	assert.Equal(t, "unknown options (colour, size)", UnknownOption([]string{"colour", "size"}).Error())
	assert.Equal(t, "cannot process, file /out/a.jpg already exists", FileExists("/out/a.jpg").Error())
	assert.Equal(t, "invalid_quality: quality (101): must be an integer between 0 and 100", InvalidQuality(101).Error())
	assert.Equal(t, "unsupported_output_format: file_name (a.png): extension must be .jpg", UnsupportedOutputFormat("a.png", "jpg").Error())
	assert.Equal(t, "unsupported_output_format: format (bmp): no encoder for this format", NoEncoder("bmp").Error())
	assert.Equal(t, "unsupported_format: /in: format text/plain", UnsupportedFormat("/in", "text/plain", nil).Error())
}
