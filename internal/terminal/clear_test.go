package terminal

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRows(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		width int
		want  int
	}{
		{"empty", 0, 80, 1},
		{"one row", 79, 80, 1},
		{"exact fit", 80, 80, 1},
		{"wraps", 81, 80, 2},
		{"unknown width", 100, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rows(tt.n, tt.width))
		})
	}
}

func TestEraseClearsWrappedPrompt(t *testing.T) {
	var buf bytes.Buffer
	Erase(&buf, strings.Repeat("x", 15), 10)

	// two rows of text plus the row left by Enter
	assert.Equal(t, 3, strings.Count(buf.String(), "\x1b[2K"))
	assert.Equal(t, 2, strings.Count(buf.String(), "\x1b[1A"))
}

func TestEraseCountsRunes(t *testing.T) {
	var buf bytes.Buffer
	Erase(&buf, "äöüäöüäöüä", 10)
	assert.Equal(t, 2, strings.Count(buf.String(), "\x1b[2K"))
}

func TestLineKeepsOutputOfNonTerminal(t *testing.T) {
	var out bytes.Buffer
	got, err := Line(bufio.NewReader(strings.NewReader("  mysql://u:p@h/db \n")), &out, "DSN: ")
	require.NoError(t, err)
	assert.Equal(t, "mysql://u:p@h/db", got)
	assert.Equal(t, "DSN: ", out.String())
}

func TestLineEmptyInput(t *testing.T) {
	_, err := Line(bufio.NewReader(strings.NewReader("")), &bytes.Buffer{}, "DSN: ")
	assert.Error(t, err)
}

func TestPasswordFromPipe(t *testing.T) {
	var out bytes.Buffer
	got, err := Password(nil, bufio.NewReader(strings.NewReader(" s3cret \r\n")), &out, "Password: ")
	require.NoError(t, err)
	assert.Equal(t, " s3cret ", got)
	assert.Equal(t, "Password: ", out.String())
}
