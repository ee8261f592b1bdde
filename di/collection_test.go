package di_test

import (
	"strings"
	"testing"

	"github.com/gocrud/beans/di"
)

type CollHandler interface {
	Handle() string
}

type CollAlpha struct{}

func (h *CollAlpha) Handle() string { return "alpha" }

type CollBeta struct{}

func (h *CollBeta) Handle() string { return "beta" }

type CollGamma struct{}

func (h *CollGamma) Handle() string { return "gamma" }

// 测试切片注入：接口的全部实现按注册顺序收集
func TestSliceInjection(t *testing.T) {
	type Dispatcher struct {
		Handlers []CollHandler `di:""`
	}

	c := di.NewContainer()
	di.Register[*CollAlpha](c)
	di.Register[*CollBeta](c)
	di.Register[*CollGamma](c)
	di.Register[*Dispatcher](c)

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	d, err := di.Resolve[*Dispatcher](c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(d.Handlers) != 3 {
		t.Fatalf("Expected 3 handlers, got %d", len(d.Handlers))
	}
	got := []string{d.Handlers[0].Handle(), d.Handlers[1].Handle(), d.Handlers[2].Handle()}
	want := []string{"alpha", "beta", "gamma"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Handler %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

// 测试 Order 选项调整收集顺序
func TestSliceInjectionOrdered(t *testing.T) {
	type Dispatcher struct {
		Handlers []CollHandler `di:""`
	}

	c := di.NewContainer()
	di.Register[*CollAlpha](c, di.WithOrder(3))
	di.Register[*CollBeta](c, di.WithOrder(1))
	di.Register[*CollGamma](c, di.WithOrder(2))
	di.Register[*Dispatcher](c)

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	d, err := di.Resolve[*Dispatcher](c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	got := []string{d.Handlers[0].Handle(), d.Handlers[1].Handle(), d.Handlers[2].Handle()}
	want := []string{"beta", "gamma", "alpha"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Handler %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

// 测试集合注入：map[T]struct{} 形态
func TestSetInjection(t *testing.T) {
	type Registry struct {
		Handlers map[CollHandler]struct{} `di:""`
	}

	c := di.NewContainer()
	di.Register[*CollAlpha](c)
	di.Register[*CollBeta](c)
	di.Register[*Registry](c)

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	r, err := di.Resolve[*Registry](c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(r.Handlers) != 2 {
		t.Fatalf("Expected 2 handlers in set, got %d", len(r.Handlers))
	}
	seen := map[string]bool{}
	for h := range r.Handlers {
		seen[h.Handle()] = true
	}
	if !seen["alpha"] || !seen["beta"] {
		t.Errorf("Set missing members: %v", seen)
	}
}

// 测试队列注入：缓冲 channel 装满后关闭
func TestQueueInjection(t *testing.T) {
	type Pipeline struct {
		Queue chan CollHandler `di:""`
	}

	c := di.NewContainer()
	di.Register[*CollAlpha](c)
	di.Register[*CollBeta](c)
	di.Register[*Pipeline](c)

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	p, err := di.Resolve[*Pipeline](c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	var names []string
	for h := range p.Queue { // 注入后即已关闭，range 会在取完后结束
		names = append(names, h.Handle())
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("Unexpected queue contents: %v", names)
	}
}

// 测试只读 channel 注入
func TestReceiveOnlyQueueInjection(t *testing.T) {
	type Pipeline struct {
		Queue <-chan CollHandler `di:""`
	}

	c := di.NewContainer()
	di.Register[*CollAlpha](c)
	di.Register[*Pipeline](c)

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	p, err := di.Resolve[*Pipeline](c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	h, ok := <-p.Queue
	if !ok || h.Handle() != "alpha" {
		t.Error("Expected alpha from receive-only queue")
	}
	if _, ok := <-p.Queue; ok {
		t.Error("Queue should be closed after draining")
	}
}

// 测试不支持的多值目标：定长数组
func TestUnsupportedCollectionTarget(t *testing.T) {
	type Broken struct {
		Handlers [2]CollHandler `di:""`
	}

	c := di.NewContainer()
	di.Register[*CollAlpha](c)
	di.Register[*CollBeta](c)
	di.Register[*Broken](c)
	// 静态校验不区分数组与切片，错误在解析期暴露
	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, err := di.Resolve[*Broken](c)
	if err == nil {
		t.Fatal("Expected error for fixed-size array target")
	}
	if !strings.Contains(err.Error(), "unsupported target type") {
		t.Errorf("Unexpected error: %v", err)
	}
}

// 测试发送 channel 注入被拒绝
func TestSendOnlyQueueRejected(t *testing.T) {
	type Broken struct {
		Queue chan<- CollHandler `di:""`
	}

	c := di.NewContainer()
	di.Register[*CollAlpha](c)
	di.Register[*Broken](c)
	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, err := di.Resolve[*Broken](c)
	if err == nil {
		t.Fatal("Expected error for send-only channel target")
	}
	if !strings.Contains(err.Error(), "unsupported target type") {
		t.Errorf("Unexpected error: %v", err)
	}
}

// 测试精确注册优先：注册过的切片整体直接命中，不触发逐元素收集
func TestExactRegistrationOverridesCollection(t *testing.T) {
	type Dispatcher struct {
		Handlers []CollHandler `di:""`
	}

	curated := []CollHandler{&CollGamma{}}

	c := di.NewContainer()
	di.Register[*CollAlpha](c)
	di.Register[*CollBeta](c)
	di.Register[[]CollHandler](c, di.WithValue(curated))
	di.Register[*Dispatcher](c)

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	d, err := di.Resolve[*Dispatcher](c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(d.Handlers) != 1 || d.Handlers[0].Handle() != "gamma" {
		t.Errorf("Expected the curated slice, got %d handlers", len(d.Handlers))
	}
}

// 测试空收集：没有候选时得到空切片而不是错误
func TestEmptyCollection(t *testing.T) {
	type Dispatcher struct {
		Handlers []CollHandler `di:""`
	}

	c := di.NewContainer()
	di.Register[*Dispatcher](c)

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	d, err := di.Resolve[*Dispatcher](c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if d.Handlers == nil {
		t.Error("Expected empty slice, got nil")
	}
	if len(d.Handlers) != 0 {
		t.Errorf("Expected 0 handlers, got %d", len(d.Handlers))
	}
}

// 测试 GetAll / ResolveAll
func TestResolveAll(t *testing.T) {
	c := di.NewContainer()
	di.Register[*CollAlpha](c)
	di.Register[*CollBeta](c)

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	handlers, err := di.ResolveAll[CollHandler](c)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if len(handlers) != 2 {
		t.Fatalf("Expected 2 handlers, got %d", len(handlers))
	}
	if handlers[0].Handle() != "alpha" || handlers[1].Handle() != "beta" {
		t.Error("Unexpected handler order")
	}

	// 没有候选时返回空集合
	missing, err := di.ResolveAll[chan int](c)
	if err != nil {
		t.Fatalf("ResolveAll of unregistered type failed: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("Expected no candidates, got %d", len(missing))
	}
}

// 测试直接以收集形状调用 Get
func TestGetCollectionShape(t *testing.T) {
	c := di.NewContainer()
	di.Register[*CollAlpha](c)
	di.Register[*CollBeta](c)

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	val, err := c.Get(di.TypeOf[[]CollHandler]())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	handlers := val.([]CollHandler)
	if len(handlers) != 2 {
		t.Fatalf("Expected 2 handlers, got %d", len(handlers))
	}
}
