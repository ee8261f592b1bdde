package logging

import "encoding/json"

// jsonEntry 序列化用的日志结构，保证输出字段顺序稳定
type jsonEntry struct {
	Time     string         `json:"time"`
	Level    string         `json:"level"`
	Category string         `json:"category,omitempty"`
	Message  string         `json:"msg"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// JsonFormatter 每条日志输出一个单行 JSON 对象（不带换行）
type JsonFormatter struct {
	TimestampFormat string
}

// NewJsonFormatter 创建 JSON 格式化器
func NewJsonFormatter() *JsonFormatter {
	return &JsonFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

// Format 格式化日志
func (f *JsonFormatter) Format(entry *LogEntry) ([]byte, error) {
	out := jsonEntry{
		Time:     entry.Time.Format(f.TimestampFormat),
		Level:    entry.Level.String(),
		Category: entry.Category,
		Message:  entry.Message,
	}

	if len(entry.Fields) > 0 {
		out.Fields = make(map[string]any, len(entry.Fields))
		for _, field := range entry.Fields {
			out.Fields[field.Key] = field.Value
		}
	}

	return json.Marshal(out)
}
