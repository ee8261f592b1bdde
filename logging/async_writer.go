package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// asyncItem 队列元素：日志条目，或带应答通道的 flush 信号
type asyncItem struct {
	entry *LogEntry
	flush chan struct{}
}

// AsyncWriter 异步日志写入器
// 条目入队后由单个后台协程格式化并写出，保证写入串行
type AsyncWriter struct {
	writer     io.Writer
	formatter  Formatter
	itemCh     chan asyncItem
	wg         sync.WaitGroup
	closeOnce  sync.Once
	errHandler func(error)
}

// NewAsyncWriter 创建新的异步写入器
func NewAsyncWriter(writer io.Writer, formatter Formatter, bufferSize int) *AsyncWriter {
	w := &AsyncWriter{
		writer:    writer,
		formatter: formatter,
		itemCh:    make(chan asyncItem, bufferSize),
	}

	w.wg.Add(1)
	go w.process()

	return w
}

// WriteLog 写入日志条目；队列满时阻塞等待，保证不丢日志
func (w *AsyncWriter) WriteLog(entry *LogEntry) {
	w.itemCh <- asyncItem{entry: entry}
}

// Flush 阻塞直到此前入队的所有条目均已写出
func (w *AsyncWriter) Flush() {
	done := make(chan struct{})
	w.itemCh <- asyncItem{flush: done}
	<-done
}

// Close 排空队列并停止后台协程
func (w *AsyncWriter) Close() error {
	w.closeOnce.Do(func() {
		close(w.itemCh)
	})
	w.wg.Wait()
	return nil
}

func (w *AsyncWriter) process() {
	defer w.wg.Done()

	for item := range w.itemCh {
		if item.flush != nil {
			close(item.flush)
			continue
		}

		data, err := w.formatter.Format(item.entry)
		if err != nil {
			w.reportError(err)
			continue
		}

		if _, err := w.writer.Write(data); err != nil {
			w.reportError(err)
		}

		// 文本格式化器自带换行，JSON 格式化器没有，缺则补上
		if len(data) > 0 && data[len(data)-1] != '\n' {
			w.writer.Write([]byte{'\n'})
		}
	}
}

func (w *AsyncWriter) reportError(err error) {
	if w.errHandler != nil {
		w.errHandler(err)
		return
	}
	fmt.Fprintf(os.Stderr, "logging: async write error: %v\n", err)
}

// SetErrorHandler 设置错误处理函数
func (w *AsyncWriter) SetErrorHandler(handler func(error)) {
	w.errHandler = handler
}
