package di_test

import (
	"testing"

	"github.com/gocrud/beans/di"
)

type ContainerLogger interface {
	Log(msg string) string
}

type ContainerConsoleLogger struct {
	Prefix string
}

func (c *ContainerConsoleLogger) Log(msg string) string {
	return c.Prefix + ": " + msg
}

// 测试容器实例的 Provide 方法
func TestContainerProvide(t *testing.T) {
	container := di.NewContainer()

	logger := &ContainerConsoleLogger{Prefix: "TEST"}
	container.Provide(logger)

	if err := container.Build(); err != nil {
		t.Fatalf("container.Build failed: %v", err)
	}

	result, err := di.Resolve[*ContainerConsoleLogger](container)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Prefix != "TEST" {
		t.Errorf("expected prefix 'TEST', got '%s'", result.Prefix)
	}
	if result != logger {
		t.Error("expected the provided instance back")
	}
}

// 测试 BindWith 泛型函数
func TestBindWith(t *testing.T) {
	container := di.NewContainer()

	logger := &ContainerConsoleLogger{Prefix: "BINDWITH"}
	di.BindWith[ContainerLogger](container, logger)

	container.Build()

	result, err := di.Resolve[ContainerLogger](container)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	msg := result.Log("test")
	expected := "BINDWITH: test"
	if msg != expected {
		t.Errorf("expected '%s', got '%s'", expected, msg)
	}
}

// 测试 Get 按 reflect.Type 解析
func TestContainerGet(t *testing.T) {
	container := di.NewContainer()

	logger := &ContainerConsoleLogger{Prefix: "GET"}
	container.Provide(logger)
	container.Build()

	instance, err := container.Get(di.TypeOf[*ContainerConsoleLogger]())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	result := instance.(*ContainerConsoleLogger)
	if result.Prefix != "GET" {
		t.Errorf("expected prefix 'GET', got '%s'", result.Prefix)
	}
}

// 测试 Resolve 带错误处理
func TestResolveWithError(t *testing.T) {
	container := di.NewContainer()

	logger := &ContainerConsoleLogger{Prefix: "TRY"}
	container.Provide(logger)
	container.Build()

	result, err := di.Resolve[*ContainerConsoleLogger](container)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Prefix != "TRY" {
		t.Errorf("expected prefix 'TRY', got '%s'", result.Prefix)
	}
}

// 测试 Resolve 失败情况
func TestResolveNotFound(t *testing.T) {
	container := di.NewContainer()
	container.Build()

	_, err := di.Resolve[*ContainerConsoleLogger](container)
	if err == nil {
		t.Error("expected error when resolving non-existent type")
	}
	if !di.IsNoSuchBean(err) {
		t.Errorf("expected NoSuchBeanError, got %v", err)
	}
}

// 测试多容器隔离
func TestMultipleContainerIsolation(t *testing.T) {
	container1 := di.NewContainer()
	container2 := di.NewContainer()

	logger1 := &ContainerConsoleLogger{Prefix: "CONTAINER1"}
	logger2 := &ContainerConsoleLogger{Prefix: "CONTAINER2"}

	di.BindWith[ContainerLogger](container1, logger1)
	di.BindWith[ContainerLogger](container2, logger2)

	container1.Build()
	container2.Build()

	result1, err := di.Resolve[ContainerLogger](container1)
	if err != nil {
		t.Fatal(err)
	}
	result2, err := di.Resolve[ContainerLogger](container2)
	if err != nil {
		t.Fatal(err)
	}

	msg1 := result1.Log("test")
	msg2 := result2.Log("test")

	if msg1 != "CONTAINER1: test" {
		t.Errorf("container1: expected 'CONTAINER1: test', got '%s'", msg1)
	}
	if msg2 != "CONTAINER2: test" {
		t.Errorf("container2: expected 'CONTAINER2: test', got '%s'", msg2)
	}
}

// 测试容器实例与全局容器隔离
func TestContainerInstanceAndGlobalContainerIsolation(t *testing.T) {
	// 重置全局容器
	di.Reset()

	// 设置全局容器
	globalLogger := &ContainerConsoleLogger{Prefix: "GLOBAL"}
	di.Bind[ContainerLogger](globalLogger)
	di.MustBuild()

	// 创建独立容器实例
	container := di.NewContainer()
	instanceLogger := &ContainerConsoleLogger{Prefix: "INSTANCE"}
	di.BindWith[ContainerLogger](container, instanceLogger)
	container.Build()

	// 验证隔离
	globalResult := di.Inject[ContainerLogger]()
	instanceResult, err := di.Resolve[ContainerLogger](container)
	if err != nil {
		t.Fatal(err)
	}

	globalMsg := globalResult.Log("test")
	instanceMsg := instanceResult.Log("test")

	if globalMsg != "GLOBAL: test" {
		t.Errorf("global: expected 'GLOBAL: test', got '%s'", globalMsg)
	}
	if instanceMsg != "INSTANCE: test" {
		t.Errorf("instance: expected 'INSTANCE: test', got '%s'", instanceMsg)
	}
}

// 测试容器实例的 TypeProvider 注册
func TestContainerProvideType(t *testing.T) {
	container := di.NewContainer()

	logger := &ContainerConsoleLogger{Prefix: "PROVIDETYPE"}
	err := container.Provide(di.TypeProvider{
		Provide: di.TypeOf[ContainerLogger](),
		UseType: logger,
	})
	if err != nil {
		t.Fatalf("Provide failed: %v", err)
	}

	container.Build()

	result, err := di.Resolve[ContainerLogger](container)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	msg := result.Log("test")
	expected := "PROVIDETYPE: test"
	if msg != expected {
		t.Errorf("expected '%s', got '%s'", expected, msg)
	}
}
