package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// FileLoggerOptions 文件日志选项
type FileLoggerOptions struct {
	Path       string
	MaxSize    int64 // 单个文件上限（字节），0 表示不轮转
	MaxBackups int   // 保留的轮转备份数
	Compress   bool  // 轮转后是否 gzip 压缩备份
	BufferSize int   // 异步队列长度，0 使用默认值
	// Formatter 自定义格式化器；为 nil 时使用无色文本格式
	Formatter Formatter
}

// FileLoggerProvider 文件日志提供者
// 写入经由 AsyncWriter 异步完成，Close 负责排空队列并关闭文件
type FileLoggerProvider struct {
	options      FileLoggerOptions
	minimumLevel LogLevel
	file         *rotatingFile
	writer       *AsyncWriter
	initOnce     sync.Once
	initErr      error
	mu           sync.RWMutex
}

func NewFileLoggerProvider(options FileLoggerOptions) *FileLoggerProvider {
	return &FileLoggerProvider{
		options:      options,
		minimumLevel: LogLevelInfo,
	}
}

func (p *FileLoggerProvider) init() {
	file, err := openRotatingFile(p.options.Path, p.options.MaxSize, p.options.MaxBackups, p.options.Compress)
	if err != nil {
		p.initErr = err
		return
	}
	p.file = file

	formatter := p.options.Formatter
	if formatter == nil {
		formatter = NewTextFormatter()
	}

	bufferSize := p.options.BufferSize
	if bufferSize <= 0 {
		bufferSize = 1024
	}

	p.writer = NewAsyncWriter(file, formatter, bufferSize)
}

func (p *FileLoggerProvider) CreateLogger(category string) Logger {
	p.initOnce.Do(p.init)

	if p.initErr != nil {
		fmt.Fprintf(os.Stderr, "logging: failed to open log file: %v\n", p.initErr)
		fallback := NewConsoleLoggerProvider(ConsoleLoggerOptions{Output: os.Stderr})
		return fallback.CreateLogger(category)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return &fileLogger{
		category:     category,
		writer:       p.writer,
		minimumLevel: p.minimumLevel,
	}
}

func (p *FileLoggerProvider) SetMinimumLevel(level LogLevel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.minimumLevel = level
}

// Close 排空异步队列并关闭底层文件
func (p *FileLoggerProvider) Close() error {
	if p.writer != nil {
		p.writer.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// fileLogger 文件日志实现，条目入队后由后台协程格式化写出
type fileLogger struct {
	category     string
	writer       *AsyncWriter
	minimumLevel LogLevel
	fields       []Field
}

func (l *fileLogger) Trace(msg string, fields ...Field) {
	l.Log(LogLevelTrace, msg, fields...)
}

func (l *fileLogger) Debug(msg string, fields ...Field) {
	l.Log(LogLevelDebug, msg, fields...)
}

func (l *fileLogger) Info(msg string, fields ...Field) {
	l.Log(LogLevelInfo, msg, fields...)
}

func (l *fileLogger) Warn(msg string, fields ...Field) {
	l.Log(LogLevelWarn, msg, fields...)
}

func (l *fileLogger) Error(msg string, fields ...Field) {
	l.Log(LogLevelError, msg, fields...)
}

func (l *fileLogger) Fatal(msg string, fields ...Field) {
	l.Log(LogLevelFatal, msg, fields...)
	// 进程即将退出，确保最后的条目落盘
	l.writer.Flush()
	os.Exit(1)
}

func (l *fileLogger) Log(level LogLevel, msg string, fields ...Field) {
	if level < l.minimumLevel {
		return
	}

	l.writer.WriteLog(&LogEntry{
		Time:     time.Now(),
		Level:    level,
		Category: l.category,
		Message:  msg,
		Fields:   mergeFields(l.fields, fields),
	})
}

func (l *fileLogger) WithFields(fields ...Field) Logger {
	return &fileLogger{
		category:     l.category,
		writer:       l.writer,
		minimumLevel: l.minimumLevel,
		fields:       mergeFields(l.fields, fields),
	}
}

func (l *fileLogger) WithCategory(category string) Logger {
	return &fileLogger{
		category:     category,
		writer:       l.writer,
		minimumLevel: l.minimumLevel,
		fields:       l.fields,
	}
}

// rotatingFile 按大小轮转的日志文件
// 达到 maxSize 后当前文件改名为 path.1（可选压缩为 path.1.gz），
// 既有备份依次后移，超出 maxBackups 的被删除
type rotatingFile struct {
	path       string
	maxSize    int64
	maxBackups int
	compress   bool
	mu         sync.Mutex
	file       *os.File
	size       int64
}

func openRotatingFile(path string, maxSize int64, maxBackups int, compress bool) (*rotatingFile, error) {
	f := &rotatingFile{
		path:       path,
		maxSize:    maxSize,
		maxBackups: maxBackups,
		compress:   compress,
	}
	if err := f.open(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *rotatingFile) open() error {
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	f.file = file
	f.size = info.Size()
	return nil
}

func (f *rotatingFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.maxSize > 0 && f.size > 0 && f.size+int64(len(p)) > f.maxSize {
		if err := f.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "logging: rotate failed: %v\n", err)
		}
	}

	n, err := f.file.Write(p)
	f.size += int64(n)
	return n, err
}

func (f *rotatingFile) rotate() error {
	if err := f.file.Close(); err != nil {
		return err
	}

	if f.maxBackups <= 0 {
		// 不保留备份，直接丢弃旧内容
		os.Remove(f.path)
	} else {
		os.Remove(f.backupName(f.maxBackups))
		for i := f.maxBackups - 1; i >= 1; i-- {
			os.Rename(f.backupName(i), f.backupName(i+1))
		}
		if f.compress {
			if err := compressFile(f.path, f.backupName(1)); err != nil {
				return err
			}
		} else {
			if err := os.Rename(f.path, f.backupName(1)); err != nil {
				return err
			}
		}
	}

	return f.open()
}

func (f *rotatingFile) backupName(i int) string {
	name := fmt.Sprintf("%s.%d", f.path, i)
	if f.compress {
		name += ".gz"
	}
	return name
}

func (f *rotatingFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}

// compressFile 将 src gzip 压缩为 dst 并删除 src
func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		out.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	in.Close()
	return os.Remove(src)
}
