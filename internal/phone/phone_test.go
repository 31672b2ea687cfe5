package phone

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"320 123 4567", "+393201234567"},
		{"3201234567", "+393201234567"},
		{"+39 320-123-4567", "+393201234567"},
		{"0039 320 1234567", "+393201234567"},
		{"393201234567", "+393201234567"},
		{"(06) 1234 5678", "+390612345678"},
		{"+15551234567", ""},
		{"0044 20 7946 0958", ""},
		{"123", ""},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestNormalizePhoneOutputShape(t *testing.T) {
	shape := regexp.MustCompile(`^\+39[0-9]{9,10}$`)
	inputs := []string{
		"320 123 4567", "+39 347 000 1111", "06 555 1234", "0039061234567",
		"+447911123456", "12", "3", "+39", "39 3", "0000000000000",
	}
	for _, in := range inputs {
		out := NormalizePhone(in)
		if out != "" {
			require.Regexp(t, shape, out, "input %q", in)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	require.False(t, ValidatePhone("123"))
	require.False(t, ValidatePhone(""))
	require.False(t, ValidatePhone("32012abc67"))
	require.True(t, ValidatePhone("3201234567"))
	require.True(t, ValidatePhone("+39 (320) 123-4567"))
	require.False(t, ValidatePhone("+1234567890123456"))
}

func TestDigitsAndLink(t *testing.T) {
	require.Equal(t, "393201234567", Digits("+39 320 123 4567"))
	require.Equal(t, "https://wa.me/393201234567", WhatsAppLink("+393201234567", ""))
	require.Equal(t, "https://wa.me/393201234567?text=ciao+a+tutti", WhatsAppLink("+393201234567", "ciao a tutti"))
}
