package di

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Container 是依赖注入容器的接口。
type Container interface {
	// Add 注册一个 bean 定义。
	Add(def *BeanDefinition) error

	// Provide 以声明式 provider 配置批量注册 bean。
	Provide(providers ...any) error

	// Build 校验依赖图并冻结注册表。
	Build() error

	// Get 检索请求类型的实例（无名称限定符）。
	Get(typ reflect.Type) (any, error)

	// GetNamed 检索请求类型与名称的实例。
	GetNamed(typ reflect.Type, name string) (any, error)

	// GetAll 检索全部匹配类型的实例，顺序为注册顺序（受 Order 调整）。
	GetAll(typ reflect.Type) ([]any, error)

	// Inject 对外部已有实例执行字段与方法注入。
	Inject(target any) error

	// CreateScope 为作用域实例创建一个新作用域。
	CreateScope() Scope

	// Close 逆创建顺序销毁全部受管实例。
	Close() error

	// beanCount 返回注册定义的总数（用于作用域条目数组大小）。
	beanCount() int
}

var containerType = reflect.TypeOf((*Container)(nil)).Elem()

// ContainerOption 配置容器行为。
type ContainerOption func(*container)

// WithEagerInit 让 Build 成功后立即实例化全部单例。
func WithEagerInit() ContainerOption {
	return func(c *container) {
		c.eager = true
	}
}

type trackedInstance struct {
	def    *BeanDefinition
	holder reflect.Value
}

// container 是具体的实现。
type container struct {
	mu     sync.RWMutex
	defs   []*BeanDefinition // 注册顺序即发现顺序
	byKey  map[BeanKey]*BeanDefinition
	built  atomic.Bool
	closed atomic.Bool
	eager  bool
	nextID int

	trackMu sync.Mutex
	tracked []trackedInstance
}

// NewContainer 创建一个新的空容器。
func NewContainer(opts ...ContainerOption) Container {
	c := &container{
		byKey: make(map[BeanKey]*BeanDefinition),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add 注册一个定义并冻结其注入点元数据。
// 重复的 (类型, 名称) 键会被拒绝；同一类型的多个实现请用名称限定符
// 或不同的具体类型区分。
func (c *container) Add(def *BeanDefinition) error {
	if c.built.Load() {
		return fmt.Errorf("di: cannot register beans after the container is built")
	}
	if def == nil || def.Type == nil {
		return fmt.Errorf("di: definition must carry a bean type")
	}
	if err := def.finalize(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := def.Key()
	if _, exists := c.byKey[key]; exists {
		if def.Name == "" {
			return fmt.Errorf("di: bean %v already registered, add a name qualifier", def.Type)
		}
		return fmt.Errorf("di: bean %v (name=%s) already registered", def.Type, def.Name)
	}
	def.ID = c.nextID
	c.nextID++
	c.byKey[key] = def
	c.defs = append(c.defs, def)
	return nil
}

// Build 校验依赖图并冻结注册表。之后 Add 将失败，定义实际上不可变。
// Build 是幂等的，并发调用只有一次生效。
func (c *container) Build() error {
	if c.built.Load() {
		return nil
	}

	c.mu.Lock()
	// 双重检查
	if c.built.Load() {
		c.mu.Unlock()
		return nil
	}

	// 静态校验：缺失的必需依赖与定义环在这里一次性暴露
	if err := c.validateGraph(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.built.Store(true)
	c.mu.Unlock()

	if !c.eager {
		return nil
	}

	// 按注册顺序预热单例，构造递归保证依赖先于使用方完成。
	// 在锁外执行，避免与解析期的读取互锁。
	for _, def := range c.defs {
		if def.Scope != ScopeSingleton {
			continue
		}
		rc := c.freshContext(nil)
		if _, err := rc.resolveDef(def); err != nil {
			return fmt.Errorf("di: eager init of %v failed: %w", def.Key(), err)
		}
	}
	return nil
}

// freeze 在第一次解析前冻结注册表（不做图校验，校验是 Build 的职责）。
func (c *container) freeze() {
	if c.built.Load() {
		return
	}
	c.mu.Lock()
	c.built.Store(true)
	c.mu.Unlock()
}

// Get 检索请求类型的实例。类型本身可以是容器形状
// （切片、集合、队列、序列、provider），与注入点走同一条分发路径。
func (c *container) Get(typ reflect.Type) (any, error) {
	return c.GetNamed(typ, "")
}

// GetNamed 检索请求类型与名称的实例。
func (c *container) GetNamed(typ reflect.Type, name string) (any, error) {
	if typ == nil {
		return nil, fmt.Errorf("di: nil type requested")
	}
	c.freeze()
	rc := c.freshContext(nil)
	return rc.resolveType(typ, name)
}

// GetAll 解析全部匹配类型的实例。没有候选时返回空切片而不是错误。
func (c *container) GetAll(typ reflect.Type) ([]any, error) {
	if typ == nil {
		return nil, fmt.Errorf("di: nil type requested")
	}
	c.freeze()
	rc := c.freshContext(nil)
	defs := orderCandidates(c.candidatesOf(typ))
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

// Inject 对外部已有实例执行字段与方法注入，不接管其生命周期。
func (c *container) Inject(target any) error {
	c.freeze()
	rc := c.freshContext(nil)
	return rc.injectExisting(target)
}

// CreateScope 为作用域实例创建一个新作用域。
func (c *container) CreateScope() Scope {
	c.freeze()
	return newScope(c)
}

// Close 逆创建顺序销毁全部受管实例，聚合清理错误。幂等。
func (c *container) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.trackMu.Lock()
	tracked := c.tracked
	c.tracked = nil
	c.trackMu.Unlock()

	var errs []error
	for i := len(tracked) - 1; i >= 0; i-- {
		t := tracked[i]
		if err := destroyInstance(c, nil, t.def, t.holder); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *container) beanCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}

// candidatesOf 返回类型的候选定义：精确匹配，外加接口请求时的
// 实现类型扫描。构建后注册表不可变，这里无锁读取；
// built 的 Store/Load 提供了所需的内存屏障。
func (c *container) candidatesOf(typ reflect.Type) []*BeanDefinition {
	var out []*BeanDefinition
	iface := typ.Kind() == reflect.Interface
	for _, d := range c.defs {
		if d.Type == typ || (iface && d.Type.Implements(typ)) {
			out = append(out, d)
		}
	}
	return out
}

// hasExact 报告 (类型, 名称) 是否存在精确注册。
func (c *container) hasExact(typ reflect.Type, name string) bool {
	_, ok := c.byKey[BeanKey{Type: typ, Name: name}]
	return ok
}

func (c *container) findCandidate(typ reflect.Type, name string) (*BeanDefinition, error) {
	return selectCandidate(typ, name, c.candidatesOf(typ))
}

func (c *container) freshContext(s *scope) *resolutionContext {
	return &resolutionContext{host: c, scope: s}
}

// resolveFresh 以全新上下文解析，provider 与惰性序列的每次取值走这里。
func (c *container) resolveFresh(typ reflect.Type, name string, s *scope) (any, error) {
	return c.freshContext(s).resolveType(typ, name)
}

func (c *container) resolveDefFresh(def *BeanDefinition, s *scope) (any, error) {
	return c.freshContext(s).resolveDef(def)
}

// trackInstance 登记受管实例用于 Close 时的逆序销毁。
func (c *container) trackInstance(def *BeanDefinition, holder reflect.Value) {
	c.trackMu.Lock()
	c.tracked = append(c.tracked, trackedInstance{def: def, holder: holder})
	c.trackMu.Unlock()
}
