package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	addressPattern       = regexp.MustCompile(`^k[a-z0-9]{9}$`)
	legacyAddressPattern = regexp.MustCompile(`^[a-f0-9]{10}$`)
	namePattern          = regexp.MustCompile(`^[a-z0-9]{1,64}$`)

	printer = message.NewPrinter(language.English)
)

// NameSuffix is the metaname suffix Krist names are written with
const NameSuffix = ".kst"

func ValidateAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errors.New("address cannot be empty")
	}
	if !addressPattern.MatchString(address) && !legacyAddressPattern.MatchString(address) {
		return errors.Errorf("invalid Krist address: %s", address)
	}
	return nil
}

// NormalizeName lower-cases a name and strips the .kst suffix
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, NameSuffix)
}

func ValidateName(name string) error {
	if name == "" {
		return errors.New("name cannot be empty")
	}
	if !namePattern.MatchString(name) {
		return errors.Errorf("invalid name %q: use 1-64 characters a-z and 0-9", name)
	}
	return nil
}

func ParseTransactionID(input string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || id < 1 {
		return 0, errors.Errorf("invalid transaction id: %q", input)
	}
	return id, nil
}

func EnsureDirectory(dirPath string) error {
	if dirPath == "" {
		return errors.New("directory path cannot be empty")
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return errors.Wrapf(err, "cannot resolve absolute path for %s", dirPath)
	}

	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return errors.Wrapf(err, "cannot create directory %s", absPath)
	}

	return nil
}

func FormatDuration(duration time.Duration) string {
	if duration < time.Second {
		return fmt.Sprintf("%d ms", duration.Milliseconds())
	}

	if duration < time.Minute {
		return fmt.Sprintf("%.1f sec", duration.Seconds())
	}

	if duration < time.Hour {
		return fmt.Sprintf("%.1f min", duration.Minutes())
	}

	return fmt.Sprintf("%.1f hrs", duration.Hours())
}

// FormatNumber groups thousands, e.g. 1,234,567
func FormatNumber(num int64) string {
	return printer.Sprintf("%d", num)
}

// FormatKrist renders an amount of Krist, e.g. "1,500 KST"
func FormatKrist(value int64) string {
	return FormatNumber(value) + " KST"
}

// FormatTime renders an API timestamp in local time
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// FormatAge renders how long ago t was, relative to now
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Local().Format("2006-01-02")
}

func ParseCommaSeparatedList(input string) []string {
	if input == "" {
		return nil
	}

	parts := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	var result []string

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// TruncateString shortens s to maxWidth terminal cells
func TruncateString(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadRight pads s with spaces to width terminal cells
func PadRight(s string, width int) string {
	return runewidth.FillRight(TruncateString(s, width), width)
}

func RemoveDuplicates(slice []string) []string {
	seen := make(map[string]bool)
	var result []string

	for _, item := range slice {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}
