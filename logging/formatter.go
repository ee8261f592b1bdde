package logging

import "time"

// LogEntry 一条待输出的日志记录
type LogEntry struct {
	Time     time.Time
	Level    LogLevel
	Category string
	Message  string
	Fields   []Field
}

// Formatter 将日志条目序列化为输出字节
// 内置实现见 TextFormatter 和 JsonFormatter
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}
