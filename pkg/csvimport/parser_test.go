package csvimport

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		raw := "first_name,last_name,phone,email,company,priority,tags\n" +
			"Jane,Doe,+44 7700 900123,jane@example.com,Initech,5,hot|inbound\n" +
			"John,Smith,(555) 010-2030,,,,\n"

		result, err := Parse(raw)
		require.NoError(t, err)
		require.Len(t, result.Records, 2)
		assert.Empty(t, result.RowErrors)

		first := result.Records[0]
		assert.Equal(t, "Jane", first.FirstName)
		assert.Equal(t, "Doe", first.LastName)
		assert.Equal(t, "+44 7700 900123", first.Phone)
		assert.Equal(t, "jane@example.com", first.Email)
		assert.Equal(t, "Initech", first.Company)
		assert.Equal(t, 5, first.Priority)
		assert.Equal(t, []string{"hot", "inbound"}, first.Tags)

		second := result.Records[1]
		assert.Equal(t, 0, second.Priority)
		assert.Empty(t, second.Tags)
	})

	t.Run("header aliases and casing", func(t *testing.T) {
		raw := "First Name,LAST_NAME,Phone Number,Company Name,Title\n" +
			"Jane,Doe,+15550001234,Initech,CTO\n"

		result, err := Parse(raw)
		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		assert.Equal(t, "Initech", result.Records[0].Company)
		assert.Equal(t, "CTO", result.Records[0].JobTitle)
	})

	t.Run("missing required columns abort", func(t *testing.T) {
		raw := "first_name,email\nJane,jane@example.com\n"

		_, err := Parse(raw)
		require.Error(t, err)

		var missing *MissingColumnsError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"last_name", "phone"}, missing.Columns)
	})

	t.Run("empty file reports all required columns", func(t *testing.T) {
		_, err := Parse("")
		var missing *MissingColumnsError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"first_name", "last_name", "phone"}, missing.Columns)
	})

	t.Run("bad rows are isolated with numbered errors", func(t *testing.T) {
		raw := "first_name,last_name,phone\n" +
			"Jane,Doe,+15550001234\n" +
			",Doe,+15550001234\n" +
			"Jane,,+15550001234\n" +
			"Jane,Doe,not-a-phone\n" +
			"Jack,Jones,+15550009999\n"

		result, err := Parse(raw)
		require.NoError(t, err)
		assert.Len(t, result.Records, 2)
		require.Len(t, result.RowErrors, 3)

		// Data rows count from 1, header excluded.
		assert.True(t, strings.HasPrefix(result.RowErrors[0], "Row 2:"))
		assert.True(t, strings.HasPrefix(result.RowErrors[1], "Row 3:"))
		assert.True(t, strings.HasPrefix(result.RowErrors[2], "Row 4:"))
		assert.Contains(t, result.RowErrors[0], "first name is required")
		assert.Contains(t, result.RowErrors[2], "invalid phone format")
	})

	t.Run("quoted fields with embedded delimiters", func(t *testing.T) {
		raw := "first_name,last_name,phone,company\n" +
			`Jane,Doe,+15550001234,"Initech, Inc."` + "\n"

		result, err := Parse(raw)
		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		assert.Equal(t, "Initech, Inc.", result.Records[0].Company)
	})

	t.Run("short rows fall back to empty fields", func(t *testing.T) {
		raw := "first_name,last_name,phone,email\n" +
			"Jane,Doe,+15550001234\n"

		result, err := Parse(raw)
		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		assert.Empty(t, result.Records[0].Email)
	})

	t.Run("leading blank lines are skipped", func(t *testing.T) {
		raw := "\n\nfirst_name,last_name,phone\nJane,Doe,+15550001234\n"

		result, err := Parse(raw)
		require.NoError(t, err)
		assert.Len(t, result.Records, 1)
	})
}

func TestPhonePattern(t *testing.T) {
	valid := []string{
		"+15550001234",
		"555 000 1234",
		"(555) 010-2030",
		"+44 7700.900123",
		"0",
	}
	for _, v := range valid {
		assert.True(t, phonePattern.MatchString(v), fmt.Sprintf("%q should be valid", v))
	}

	invalid := []string{
		"+",
		"abc",
		"555x1234",
		"+1 555 ext 12",
	}
	for _, v := range invalid {
		assert.False(t, phonePattern.MatchString(v), fmt.Sprintf("%q should be invalid", v))
	}
}
