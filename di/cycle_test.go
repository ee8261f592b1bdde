package di_test

import (
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/gocrud/beans/di"
)

type CycOrderService struct {
	Repo *CycOrderRepo
}

type CycOrderRepo struct {
	Svc *CycOrderService
}

func NewCycOrderService(repo *CycOrderRepo) *CycOrderService {
	return &CycOrderService{Repo: repo}
}

func NewCycOrderRepo(svc *CycOrderService) *CycOrderRepo {
	return &CycOrderRepo{Svc: svc}
}

// Build 应静态发现构造函数互相依赖的环，而不是等到第一次解析。
func TestBuildDetectsConstructorCycle(t *testing.T) {
	c := di.NewContainer()
	di.Register[*CycOrderService](c, di.WithFactory(NewCycOrderService))
	di.Register[*CycOrderRepo](c, di.WithFactory(NewCycOrderRepo))

	err := c.Build()
	if err == nil {
		t.Fatal("expected Build to fail on a dependency cycle")
	}
	if !di.IsCircularDependency(err) {
		t.Fatalf("expected circular dependency error, got: %v", err)
	}

	var circ *di.CircularDependencyError
	if !errors.As(err, &circ) {
		t.Fatalf("expected *CircularDependencyError in chain, got: %v", err)
	}
	if !strings.Contains(circ.Chain, " --> ") {
		t.Fatalf("expected chain with arrows, got: %s", circ.Chain)
	}
	// 闭环类型在链路首尾各出现一次
	if n := strings.Count(circ.Chain, "CycOrderService"); n != 2 {
		t.Fatalf("expected closing type to appear twice in chain, got %d in: %s", n, circ.Chain)
	}
	if !strings.Contains(circ.Chain, "CycOrderRepo") {
		t.Fatalf("expected chain to mention CycOrderRepo, got: %s", circ.Chain)
	}
}

type CycNodeA struct {
	B *CycNodeB `di:""`
}

type CycNodeB struct {
	A *CycNodeA `di:""`
}

func TestBuildDetectsFieldCycle(t *testing.T) {
	c := di.NewContainer()
	di.Register[*CycNodeA](c)
	di.Register[*CycNodeB](c)

	err := c.Build()
	if err == nil {
		t.Fatal("expected Build to fail on a field injection cycle")
	}
	if !di.IsCircularDependency(err) {
		t.Fatalf("expected circular dependency error, got: %v", err)
	}
}

type CycSelf struct {
	Next *CycSelf
}

func NewCycSelf(next *CycSelf) *CycSelf {
	return &CycSelf{Next: next}
}

func TestBuildDetectsSelfCycle(t *testing.T) {
	c := di.NewContainer()
	di.Register[*CycSelf](c, di.WithFactory(NewCycSelf))

	err := c.Build()
	if err == nil {
		t.Fatal("expected Build to fail on a self dependency")
	}
	var circ *di.CircularDependencyError
	if !errors.As(err, &circ) {
		t.Fatalf("expected *CircularDependencyError, got: %v", err)
	}
	if n := strings.Count(circ.Chain, "CycSelf"); n != 2 {
		t.Fatalf("expected self cycle rendered as two nodes, got: %s", circ.Chain)
	}
}

// 不经 Build 直接解析时，环在解析路径上被动态捕获，
// 错误链路按注入点渲染。
func TestRuntimeCycleDetection(t *testing.T) {
	c := di.NewContainer()
	di.Register[*CycNodeA](c)
	di.Register[*CycNodeB](c)

	_, err := di.Resolve[*CycNodeA](c)
	if err == nil {
		t.Fatal("expected resolve to fail on a cycle")
	}
	if !di.IsCircularDependency(err) {
		t.Fatalf("expected circular dependency error, got: %v", err)
	}

	var circ *di.CircularDependencyError
	if !errors.As(err, &circ) {
		t.Fatalf("expected *CircularDependencyError, got: %v", err)
	}
	if !strings.Contains(circ.Chain, "(*di_test.CycNodeA).B") {
		t.Fatalf("expected field segment for CycNodeA.B, got: %s", circ.Chain)
	}
	if !strings.Contains(circ.Chain, "(*di_test.CycNodeB).A") {
		t.Fatalf("expected field segment for CycNodeB.A, got: %s", circ.Chain)
	}
	if !strings.Contains(circ.Chain, "new(*di_test.CycNodeA)") {
		t.Fatalf("expected chain to close on re-entered constructor, got: %s", circ.Chain)
	}

	// 单例单元缓存失败结果，后续解析得到同样的环错误而不是死锁
	_, err2 := di.Resolve[*CycNodeA](c)
	if !di.IsCircularDependency(err2) {
		t.Fatalf("expected cached circular dependency error, got: %v", err2)
	}
}

func TestRuntimeSelfCycle(t *testing.T) {
	c := di.NewContainer()
	di.Register[*CycSelf](c, di.WithFactory(NewCycSelf))

	_, err := di.Resolve[*CycSelf](c)
	if err == nil {
		t.Fatal("expected resolve to fail on a self dependency")
	}
	if !di.IsCircularDependency(err) {
		t.Fatalf("expected circular dependency error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "new(") {
		t.Fatalf("expected constructor segment in chain, got: %v", err)
	}
}

type CycPublisher struct {
	Sub di.Provider[*CycSubscriber] `di:""`
}

type CycSubscriber struct {
	Pub *CycPublisher `di:""`
}

// Provider 注入点不参与连边：把环的一条边改成延迟工厂后
// Build 通过，实际解析发生在调用 provider 时，此时单例已发布。
func TestProviderBreaksCycle(t *testing.T) {
	c := di.NewContainer()
	di.Register[*CycPublisher](c)
	di.Register[*CycSubscriber](c)

	if err := c.Build(); err != nil {
		t.Fatalf("expected Build to succeed with a provider edge, got: %v", err)
	}

	pub, err := di.Resolve[*CycPublisher](c)
	if err != nil {
		t.Fatalf("failed to resolve publisher: %v", err)
	}
	sub, err := pub.Sub()
	if err != nil {
		t.Fatalf("failed to resolve subscriber through provider: %v", err)
	}
	if sub.Pub != pub {
		t.Fatal("expected subscriber to hold the published singleton")
	}

	sub2, err := pub.Sub()
	if err != nil {
		t.Fatalf("second provider call failed: %v", err)
	}
	if sub2 != sub {
		t.Fatal("expected provider to return the cached singleton")
	}
}

type CycHandler interface {
	HandleCyc()
}

type CycHub struct {
	Handlers []CycHandler `di:""`
}

func (h *CycHub) HandleCyc() {}

// 聚合自身所属集合的 bean 是一条自环：切片连边到全部元素候选。
func TestCollectionSelfCycleDetected(t *testing.T) {
	c := di.NewContainer()
	di.Register[CycHandler](c, di.Use[*CycHub]())

	err := c.Build()
	if err == nil {
		t.Fatal("expected Build to fail when a bean aggregates its own collection")
	}
	if !di.IsCircularDependency(err) {
		t.Fatalf("expected circular dependency error, got: %v", err)
	}
}

type CycLazyHub struct {
	Handlers iter.Seq2[CycHandler, error] `di:""`
}

func (h *CycLazyHub) HandleCyc() {}

// 惰性序列同样不连边：bean 可以聚合包含自身的序列，
// 迭代发生在自身构造完成之后。
func TestLazyStreamEscapesSelfCycle(t *testing.T) {
	c := di.NewContainer()
	di.Register[CycHandler](c, di.Use[*CycLazyHub]())

	if err := c.Build(); err != nil {
		t.Fatalf("expected Build to succeed with a lazy stream edge, got: %v", err)
	}

	hub, err := di.Resolve[CycHandler](c)
	if err != nil {
		t.Fatalf("failed to resolve hub: %v", err)
	}
	lazy, ok := hub.(*CycLazyHub)
	if !ok {
		t.Fatalf("expected *CycLazyHub, got %T", hub)
	}

	var seen []CycHandler
	for h, err := range lazy.Handlers {
		if err != nil {
			t.Fatalf("unexpected error during iteration: %v", err)
		}
		seen = append(seen, h)
	}
	if len(seen) != 1 || seen[0] != hub {
		t.Fatalf("expected the hub itself as the only element, got %d elements", len(seen))
	}
}
