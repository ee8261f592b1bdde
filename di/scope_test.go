package di

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
)

// 测试用接口和实现
type ScopedTestLogger interface {
	Log(msg string)
}

type ScopedConsoleLogger struct {
	ID int
}

func (l *ScopedConsoleLogger) Log(msg string) {
	fmt.Printf("[Logger %d] %s\n", l.ID, msg)
}

var loggerCounter int
var loggerMu sync.Mutex

func NewScopedLogger() *ScopedConsoleLogger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	loggerCounter++
	return &ScopedConsoleLogger{ID: loggerCounter}
}

type ScopedTestService struct {
	Logger ScopedTestLogger `di:""`
	Name   string
}

func NewScopedTestService(logger ScopedTestLogger) *ScopedTestService {
	return &ScopedTestService{
		Logger: logger,
		Name:   "TestService",
	}
}

var scopedLoggerType = reflect.TypeOf((*ScopedTestLogger)(nil)).Elem()

// Test Singleton scope - 应该只创建一次
func TestScopeSingleton(t *testing.T) {
	loggerCounter = 0
	container := NewContainer()

	// 注册为 Singleton（默认）
	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
		Options: ProviderOptions{
			Scope: ScopeSingleton,
		},
	})

	if err := container.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// 多次获取应该返回同一实例
	logger1, err := container.Get(scopedLoggerType)
	if err != nil {
		t.Fatalf("Failed to get logger1: %v", err)
	}

	logger2, err := container.Get(scopedLoggerType)
	if err != nil {
		t.Fatalf("Failed to get logger2: %v", err)
	}

	logger3, err := container.Get(scopedLoggerType)
	if err != nil {
		t.Fatalf("Failed to get logger3: %v", err)
	}

	// 验证是同一实例
	if logger1.(*ScopedConsoleLogger).ID != logger2.(*ScopedConsoleLogger).ID {
		t.Errorf("Expected same instance, got different IDs: %d vs %d",
			logger1.(*ScopedConsoleLogger).ID, logger2.(*ScopedConsoleLogger).ID)
	}

	if logger2.(*ScopedConsoleLogger).ID != logger3.(*ScopedConsoleLogger).ID {
		t.Errorf("Expected same instance, got different IDs: %d vs %d",
			logger2.(*ScopedConsoleLogger).ID, logger3.(*ScopedConsoleLogger).ID)
	}

	// 验证只创建了一次
	if loggerCounter != 1 {
		t.Errorf("Expected logger to be created once, but created %d times", loggerCounter)
	}
}

// Test Transient scope - 每次都应该创建新实例
func TestScopeTransient(t *testing.T) {
	loggerCounter = 0
	container := NewContainer()

	// 注册为 Transient
	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
		Options: ProviderOptions{
			Scope: ScopeTransient,
		},
	})

	if err := container.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// 多次获取应该返回不同实例
	logger1, err := container.Get(scopedLoggerType)
	if err != nil {
		t.Fatalf("Failed to get logger1: %v", err)
	}

	logger2, err := container.Get(scopedLoggerType)
	if err != nil {
		t.Fatalf("Failed to get logger2: %v", err)
	}

	// 验证是不同实例
	if logger1.(*ScopedConsoleLogger).ID == logger2.(*ScopedConsoleLogger).ID {
		t.Errorf("Expected different instances, got same ID: %d", logger1.(*ScopedConsoleLogger).ID)
	}

	// 验证创建了两次
	if loggerCounter != 2 {
		t.Errorf("Expected logger to be created 2 times, but created %d times", loggerCounter)
	}
}

// Test Scoped scope - 在同一作用域内应该是单例，不同作用域应该不同
func TestScopeScoped(t *testing.T) {
	loggerCounter = 0
	container := NewContainer()

	// 注册为 Scoped
	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
		Options: ProviderOptions{
			Scope: ScopeScoped,
		},
	})

	if err := container.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// 作用域 1
	scope1 := container.CreateScope()

	logger1a, err := scope1.Get(scopedLoggerType)
	if err != nil {
		t.Fatalf("Failed to get logger1a: %v", err)
	}

	logger1b, err := scope1.Get(scopedLoggerType)
	if err != nil {
		t.Fatalf("Failed to get logger1b: %v", err)
	}

	// 在同一作用域内应该是同一实例
	if logger1a.(*ScopedConsoleLogger).ID != logger1b.(*ScopedConsoleLogger).ID {
		t.Errorf("Expected same instance in scope1, got different IDs: %d vs %d",
			logger1a.(*ScopedConsoleLogger).ID, logger1b.(*ScopedConsoleLogger).ID)
	}

	// 作用域 2
	scope2 := container.CreateScope()

	logger2a, err := scope2.Get(scopedLoggerType)
	if err != nil {
		t.Fatalf("Failed to get logger2a: %v", err)
	}

	// 不同作用域应该是不同实例
	if logger1a.(*ScopedConsoleLogger).ID == logger2a.(*ScopedConsoleLogger).ID {
		t.Errorf("Expected different instances between scopes, got same ID: %d",
			logger1a.(*ScopedConsoleLogger).ID)
	}

	// 验证创建了两次（每个作用域一次）
	if loggerCounter != 2 {
		t.Errorf("Expected logger to be created 2 times, but created %d times", loggerCounter)
	}

	// 清理
	scope1.Dispose()
	scope2.Dispose()
}

// Test 单例穿透作用域 - 经由作用域解析的单例仍归父容器
func TestScopeSingletonSharedAcrossScopes(t *testing.T) {
	loggerCounter = 0
	container := NewContainer()

	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
	})

	if err := container.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	scope1 := container.CreateScope()
	scope2 := container.CreateScope()
	defer scope1.Dispose()
	defer scope2.Dispose()

	logger1, err := scope1.Get(scopedLoggerType)
	if err != nil {
		t.Fatal(err)
	}
	logger2, err := scope2.Get(scopedLoggerType)
	if err != nil {
		t.Fatal(err)
	}
	logger3, err := container.Get(scopedLoggerType)
	if err != nil {
		t.Fatal(err)
	}

	if logger1.(*ScopedConsoleLogger) != logger2.(*ScopedConsoleLogger) ||
		logger2.(*ScopedConsoleLogger) != logger3.(*ScopedConsoleLogger) {
		t.Error("Expected the same singleton through every scope")
	}
	if loggerCounter != 1 {
		t.Errorf("Expected 1 instance, got %d", loggerCounter)
	}
}

// Test Singleton 不能依赖 Transient
func TestSingletonCannotDependOnTransient(t *testing.T) {
	container := NewContainer()

	// 注册 Transient logger
	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
		Options: ProviderOptions{
			Scope: ScopeTransient,
		},
	})

	// 注册 Singleton service 依赖 Transient logger
	container.Provide(NewScopedTestService)

	// Build 应该失败
	err := container.Build()
	if err == nil {
		t.Fatal("Expected Build to fail when Singleton depends on Transient, but it succeeded")
	}
	if !strings.Contains(err.Error(), "cannot depend on") {
		t.Errorf("Unexpected error: %v", err)
	}

	t.Logf("Got expected error: %v", err)
}

// Test Singleton 不能依赖 Scoped
func TestSingletonCannotDependOnScoped(t *testing.T) {
	container := NewContainer()

	// 注册 Scoped logger
	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
		Options: ProviderOptions{
			Scope: ScopeScoped,
		},
	})

	// 注册 Singleton service 依赖 Scoped logger
	container.Provide(NewScopedTestService)

	// Build 应该失败
	err := container.Build()
	if err == nil {
		t.Fatal("Expected Build to fail when Singleton depends on Scoped, but it succeeded")
	}

	t.Logf("Got expected error: %v", err)
}

// Test Scoped 不能依赖 Transient
func TestScopedCannotDependOnTransient(t *testing.T) {
	container := NewContainer()

	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
		Options: ProviderOptions{
			Scope: ScopeTransient,
		},
	})
	container.Provide(FactoryProvider{
		Provide: reflect.TypeOf((*ScopedTestService)(nil)),
		Factory: NewScopedTestService,
		Options: ProviderOptions{
			Scope: ScopeScoped,
		},
	})

	err := container.Build()
	if err == nil {
		t.Fatal("Expected Build to fail when Scoped depends on Transient, but it succeeded")
	}
}

// Test 单例可以经由 Provider 延迟获取瞬态实例
func TestSingletonCanDeferTransientViaProvider(t *testing.T) {
	loggerCounter = 0
	container := NewContainer()

	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
		Options: ProviderOptions{
			Scope: ScopeTransient,
		},
	})

	type loggerFactoryHolder struct {
		Factory func() (ScopedTestLogger, error) `di:""`
	}
	container.Provide(&loggerFactoryHolder{})

	if err := container.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	instance, err := container.Get(reflect.TypeOf((*loggerFactoryHolder)(nil)))
	if err != nil {
		t.Fatal(err)
	}
	holder := instance.(*loggerFactoryHolder)

	l1, err := holder.Factory()
	if err != nil {
		t.Fatal(err)
	}
	l2, err := holder.Factory()
	if err != nil {
		t.Fatal(err)
	}
	if l1.(*ScopedConsoleLogger).ID == l2.(*ScopedConsoleLogger).ID {
		t.Error("Expected fresh transient per factory call")
	}
	if loggerCounter != 2 {
		t.Errorf("Expected 2 instances, got %d", loggerCounter)
	}
}

// Test Transient 可以依赖 Singleton
func TestTransientCanDependOnSingleton(t *testing.T) {
	loggerCounter = 0
	container := NewContainer()

	// 注册 Singleton logger
	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
		Options: ProviderOptions{
			Scope: ScopeSingleton,
		},
	})

	// 注册 Transient service 依赖 Singleton logger
	container.Provide(FactoryProvider{
		Provide: reflect.TypeOf((*ScopedTestService)(nil)),
		Factory: NewScopedTestService,
		Options: ProviderOptions{
			Scope: ScopeTransient,
		},
	})

	if err := container.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// 获取两个 service 实例
	service1, err := container.Get(reflect.TypeOf((*ScopedTestService)(nil)))
	if err != nil {
		t.Fatalf("Failed to get service1: %v", err)
	}

	service2, err := container.Get(reflect.TypeOf((*ScopedTestService)(nil)))
	if err != nil {
		t.Fatalf("Failed to get service2: %v", err)
	}

	// Service 应该是不同实例（Transient）
	if service1.(*ScopedTestService) == service2.(*ScopedTestService) {
		t.Error("Expected different service instances (Transient)")
	}

	// 但它们的 Logger 应该是同一实例（Singleton）
	if service1.(*ScopedTestService).Logger.(*ScopedConsoleLogger).ID != service2.(*ScopedTestService).Logger.(*ScopedConsoleLogger).ID {
		t.Error("Expected same logger instance in different transient services")
	}

	// Logger 应该只创建一次
	if loggerCounter != 1 {
		t.Errorf("Expected logger to be created once, but created %d times", loggerCounter)
	}
}

// Test Scope Dispose
func TestScopeDispose(t *testing.T) {
	container := NewContainer()

	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
		Options: ProviderOptions{
			Scope: ScopeScoped,
		},
	})

	if err := container.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	scope := container.CreateScope()

	// 获取实例
	_, err := scope.Get(scopedLoggerType)
	if err != nil {
		t.Fatalf("Failed to get logger: %v", err)
	}

	// 释放作用域
	scope.Dispose()

	// 再次获取应该失败
	_, err = scope.Get(scopedLoggerType)
	if err == nil {
		t.Fatal("Expected Get to fail after Dispose, but it succeeded")
	}

	if !strings.Contains(err.Error(), "scope has been disposed") {
		t.Errorf("Expected 'scope has been disposed' error, got: %v", err)
	}
}

// Test Dispose 销毁作用域内实例
func TestScopeDisposeDestroysInstances(t *testing.T) {
	container := NewContainer()

	Register[*disposeRecorder](container, WithScoped())
	if err := container.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	scope := container.CreateScope()
	instance, err := scope.Get(reflect.TypeOf((*disposeRecorder)(nil)))
	if err != nil {
		t.Fatal(err)
	}
	rec := instance.(*disposeRecorder)
	if rec.destroyed {
		t.Fatal("Instance destroyed before Dispose")
	}

	if err := scope.Dispose(); err != nil {
		t.Fatalf("Dispose failed: %v", err)
	}
	if !rec.destroyed {
		t.Error("Expected PreDestroy to run on Dispose")
	}

	// 幂等：重复 Dispose 不再触发销毁
	if err := scope.Dispose(); err != nil {
		t.Errorf("Second Dispose should be a no-op: %v", err)
	}
}

type disposeRecorder struct {
	destroyed bool
}

func (d *disposeRecorder) PreDestroy() error {
	d.destroyed = true
	return nil
}

// Test 并发访问 Transient
func TestTransientConcurrency(t *testing.T) {
	loggerCounter = 0
	container := NewContainer()

	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
		Options: ProviderOptions{
			Scope: ScopeTransient,
		},
	})

	if err := container.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	const numGoroutines = 100
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	ids := make([]int, numGoroutines)
	errs := make([]error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(index int) {
			defer wg.Done()
			logger, err := container.Get(scopedLoggerType)
			if err != nil {
				errs[index] = err
				return
			}
			ids[index] = logger.(*ScopedConsoleLogger).ID
		}(i)
	}

	wg.Wait()

	// 检查错误
	for i, err := range errs {
		if err != nil {
			t.Errorf("Goroutine %d failed: %v", i, err)
		}
	}

	// 验证所有 ID 都不相同
	idMap := make(map[int]bool)
	for _, id := range ids {
		if idMap[id] {
			t.Errorf("Duplicate ID found: %d", id)
		}
		idMap[id] = true
	}

	// 验证创建了正确的数量
	if loggerCounter != numGoroutines {
		t.Errorf("Expected %d instances, got %d", numGoroutines, loggerCounter)
	}
}

// Test 并发访问 Scoped
func TestScopedConcurrency(t *testing.T) {
	loggerCounter = 0
	container := NewContainer()

	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
		Options: ProviderOptions{
			Scope: ScopeScoped,
		},
	})

	if err := container.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	scope := container.CreateScope()

	const numGoroutines = 100
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	ids := make([]int, numGoroutines)
	errs := make([]error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(index int) {
			defer wg.Done()
			logger, err := scope.Get(scopedLoggerType)
			if err != nil {
				errs[index] = err
				return
			}
			ids[index] = logger.(*ScopedConsoleLogger).ID
		}(i)
	}

	wg.Wait()

	// 检查错误
	for i, err := range errs {
		if err != nil {
			t.Errorf("Goroutine %d failed: %v", i, err)
		}
	}

	// 验证所有 ID 都相同（同一作用域内）
	firstID := ids[0]
	for _, id := range ids {
		if id != firstID {
			t.Errorf("Expected all IDs to be %d, got %d", firstID, id)
		}
	}

	// 验证只创建了一次
	if loggerCounter != 1 {
		t.Errorf("Expected 1 instance, got %d", loggerCounter)
	}

	scope.Dispose()
}

// Test 从根容器直接解析 Scoped
func TestScopedFromRootContainer(t *testing.T) {
	container := NewContainer()

	container.Provide(TypeProvider{
		Provide: scopedLoggerType,
		UseType: NewScopedLogger,
		Options: ProviderOptions{
			Scope: ScopeScoped,
		},
	})

	if err := container.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// 不创建作用域，直接从根容器获取
	_, err := container.Get(scopedLoggerType)
	if err == nil {
		t.Fatal("Expected Get to fail without a scope, but it succeeded")
	}
	if !strings.Contains(err.Error(), "CreateScope") {
		t.Errorf("Unexpected error: %v", err)
	}

	t.Logf("Got expected error: %v", err)
}
