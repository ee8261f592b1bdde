package di

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Scope 表示作用域生命周期上下文。作用域内每个 Scoped 定义
// 至多一个实例；单例透传给父容器，瞬态照常新建。
type Scope interface {
	Container
	// Dispose 逆创建顺序销毁作用域内实例并释放资源。
	Dispose() error
}

type scopeEntry struct {
	val atomic.Value // 存储 *scopedHolder，未创建时为空
	mu  sync.Mutex   // 保护该条目的首次构造
}

// scopedHolder 统一 atomic.Value 的存储类型，接口实例也能安全存取。
type scopedHolder struct {
	inst any
}

type scope struct {
	parent   *container
	entries  []scopeEntry // 按 BeanDefinition.ID 索引
	disposed atomic.Bool

	trackMu sync.Mutex
	tracked []trackedInstance
}

func newScope(parent *container) *scope {
	return &scope{
		parent:  parent,
		entries: make([]scopeEntry, parent.beanCount()),
	}
}

// errScopeDisposed 在已释放的作用域上解析时返回。
var errScopeDisposed = errors.New("di: scope has been disposed")

// resolve 返回作用域内实例，必要时在条目锁下构造。
// 构造失败不缓存，后续请求可以重试；发布只在成功后发生。
func (s *scope) resolve(def *BeanDefinition, rc *resolutionContext) (any, error) {
	if s.disposed.Load() {
		return nil, errScopeDisposed
	}
	if def.ID < 0 || def.ID >= len(s.entries) {
		return nil, fmt.Errorf("di: internal error, invalid bean ID %d", def.ID)
	}
	// 条目指针稳定：切片在作用域创建后不再扩容
	entry := &s.entries[def.ID]

	// 快速路径
	if h, ok := entry.val.Load().(*scopedHolder); ok {
		return h.inst, nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if s.disposed.Load() {
		return nil, errScopeDisposed
	}
	// 双重检查
	if h, ok := entry.val.Load().(*scopedHolder); ok {
		return h.inst, nil
	}

	inst, err := rc.buildInstance(def)
	if err != nil {
		return nil, err
	}
	entry.val.Store(&scopedHolder{inst: inst})
	return inst, nil
}

func (s *scope) Add(def *BeanDefinition) error {
	return fmt.Errorf("di: cannot register beans on a scope")
}

func (s *scope) Provide(providers ...any) error {
	return fmt.Errorf("di: cannot register beans on a scope")
}

func (s *scope) Build() error {
	return nil // 作用域基于已构建的父容器
}

func (s *scope) Get(typ reflect.Type) (any, error) {
	return s.GetNamed(typ, "")
}

func (s *scope) GetNamed(typ reflect.Type, name string) (any, error) {
	if s.disposed.Load() {
		return nil, errScopeDisposed
	}
	if typ == nil {
		return nil, fmt.Errorf("di: nil type requested")
	}
	return s.parent.freshContext(s).resolveType(typ, name)
}

func (s *scope) GetAll(typ reflect.Type) ([]any, error) {
	if s.disposed.Load() {
		return nil, errScopeDisposed
	}
	if typ == nil {
		return nil, fmt.Errorf("di: nil type requested")
	}
	rc := s.parent.freshContext(s)
	defs := orderCandidates(s.parent.candidatesOf(typ))
	out := make([]any, 0, len(defs))
	for _, def := range defs {
		inst, err := rc.resolveDef(def)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func (s *scope) Inject(target any) error {
	if s.disposed.Load() {
		return errScopeDisposed
	}
	return s.parent.freshContext(s).injectExisting(target)
}

func (s *scope) CreateScope() Scope {
	return s.parent.CreateScope()
}

// Close 等价于 Dispose，满足 Container 接口。
func (s *scope) Close() error {
	return s.Dispose()
}

// Dispose 逆创建顺序销毁作用域内实例。幂等。
// 条目切片保留到作用域本身被回收，避免与在途解析竞争。
func (s *scope) Dispose() error {
	if !s.disposed.CompareAndSwap(false, true) {
		return nil
	}
	s.trackMu.Lock()
	tracked := s.tracked
	s.tracked = nil
	s.trackMu.Unlock()

	var errs []error
	for i := len(tracked) - 1; i >= 0; i-- {
		t := tracked[i]
		if err := destroyInstance(s.parent, s, t.def, t.holder); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *scope) trackInstance(def *BeanDefinition, holder reflect.Value) {
	s.trackMu.Lock()
	s.tracked = append(s.tracked, trackedInstance{def: def, holder: holder})
	s.trackMu.Unlock()
}

// beanCount 委托给父容器。
func (s *scope) beanCount() int {
	return s.parent.beanCount()
}
