package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"String", TypeString},
		{"java.util.UUID", TypeString},
		{"char", TypeString},
		{"Long", TypeInteger},
		{"int", TypeInteger},
		{"BigInteger", TypeInteger},
		{"double", TypeNumber},
		{"BigDecimal", TypeNumber},
		{"Boolean", TypeBoolean},
		{"boolean", TypeBoolean},
		{"LocalDateTime", TypeString},
		{"java.time.Instant", TypeString},
		{"List<String>", TypeObject},
		{"Optional<Long>", TypeObject},
		{"String[]", TypeObject},
		{"string", TypeObject},
		{"AddressDto", TypeObject},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeType(tt.raw))
		})
	}
}

func TestTypeFormat(t *testing.T) {
	assert.Equal(t, FormatDate, TypeFormat("LocalDate"))
	assert.Equal(t, FormatDateTime, TypeFormat("LocalDateTime"))
	assert.Equal(t, FormatDateTime, TypeFormat("java.util.Date"))
	assert.Equal(t, FormatDateTime, TypeFormat("OffsetDateTime"))
	assert.Equal(t, "", TypeFormat("LocalTime"))
	assert.Equal(t, "", TypeFormat("String"))
}
