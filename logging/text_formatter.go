package logging

import (
	"fmt"
)

// TextFormatter 文本格式化器
type TextFormatter struct {
	IncludeTimestamp bool
	TimestampFormat  string
	ColorOutput      bool
}

// NewTextFormatter 创建文本格式化器
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{
		IncludeTimestamp: true,
		TimestampFormat:  "2006-01-02 15:04:05",
		ColorOutput:      false,
	}
}

// Format 格式化日志，末尾带换行
// 返回独立副本，buffer 在返回前归还池中
func (f *TextFormatter) Format(entry *LogEntry) ([]byte, error) {
	buffer := bufPool.Get()

	if f.IncludeTimestamp {
		buffer.WriteString(entry.Time.Format(f.TimestampFormat))
		buffer.WriteByte(' ')
	}

	levelStr := entry.Level.String()
	if f.ColorOutput {
		buffer.WriteString(colorize(entry.Level, levelStr))
	} else {
		buffer.WriteString(levelStr)
	}

	if entry.Category != "" {
		buffer.WriteString(" [")
		buffer.WriteString(entry.Category)
		buffer.WriteString("]")
	}

	buffer.WriteByte(' ')
	buffer.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		buffer.WriteString(" {")
		for i, field := range entry.Fields {
			if i > 0 {
				buffer.WriteString(", ")
			}
			buffer.WriteString(field.Key)
			buffer.WriteByte('=')
			fmt.Fprintf(buffer, "%v", field.Value)
		}
		buffer.WriteByte('}')
	}

	buffer.WriteByte('\n')

	result := make([]byte, buffer.Len())
	copy(result, buffer.Bytes())
	bufPool.Put(buffer)

	return result, nil
}
