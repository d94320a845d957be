package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
)

// FormatConfig controls the text formatter's output.
type FormatConfig struct {
	DisableTimestamp bool
	DisableComponent bool
	DisableColors    bool
}

// TextFormatter is a custom logrus formatter.
type TextFormatter struct {
	Config FormatConfig

	profile     termenv.Profile
	profileOnce bool
}

// Format renders a single log entry.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	if !f.profileOnce {
		f.profile = termenv.ColorProfile()
		f.profileOnce = true
	}

	if !f.Config.DisableTimestamp {
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
	}

	// Map logrus level strings to shorter versions for consistency
	levelStr := entry.Level.String()
	if levelStr == "warning" {
		levelStr = "warn"
	}
	b.WriteString(fmt.Sprintf("[%s]", strings.ToUpper(levelStr)))

	if component, ok := entry.Data["component"]; ok && !f.Config.DisableComponent {
		componentStr := fmt.Sprintf("%v", component)
		if !f.Config.DisableColors {
			componentStr = termenv.String(componentStr).Foreground(f.profile.Color("6")).String()
		}
		b.WriteString(fmt.Sprintf(" [%s]", componentStr))
	}

	b.WriteString(" ")
	b.WriteString(entry.Message)

	// Append remaining fields in a stable order
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == "component" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", k, entry.Data[k]))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}
