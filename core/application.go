package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"sync"
	"syscall"
	"time"

	"github.com/gocrud/beans/config"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/hosting"
	"github.com/gocrud/beans/logging"
)

// Application 应用程序接口
type Application interface {
	Run() error
	RunAsync(ctx context.Context) error
	Stop(ctx context.Context) error
	Services() di.Container
	Configuration() config.Configuration
	Logger() logging.Logger
	Environment() Environment
	GetService(ptr any)
}

// ApplicationBuilder 应用程序构建器
type ApplicationBuilder struct {
	environment          string
	configBuilder        *config.ConfigurationBuilder
	loggingBuilder       *logging.LoggingBuilder
	serviceConfigurators []func(*ServiceCollection)
	configurators        []Configurator
	shutdownTimeout      time.Duration
	eagerInit            bool
	mu                   sync.RWMutex
}

// NewApplicationBuilder 创建应用程序构建器
func NewApplicationBuilder() *ApplicationBuilder {
	return &ApplicationBuilder{
		environment:          "development",
		configBuilder:        config.NewConfigurationBuilder(),
		loggingBuilder:       logging.NewLoggingBuilder(),
		serviceConfigurators: make([]func(*ServiceCollection), 0),
		configurators:        make([]Configurator, 0),
		shutdownTimeout:      30 * time.Second,
	}
}

// UseEnvironment 设置环境
func (b *ApplicationBuilder) UseEnvironment(env string) *ApplicationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.environment = env
	return b
}

// UseEagerInit 构建容器后立即实例化所有单例
// 也可以通过配置键 beans:eager_init 开启
func (b *ApplicationBuilder) UseEagerInit() *ApplicationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.eagerInit = true
	return b
}

// ConfigureConfiguration 配置配置系统
func (b *ApplicationBuilder) ConfigureConfiguration(configure func(*config.ConfigurationBuilder)) *ApplicationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if configure != nil {
		configure(b.configBuilder)
	}
	return b
}

// ConfigureLogging 配置日志系统
func (b *ApplicationBuilder) ConfigureLogging(configure func(*logging.LoggingBuilder)) *ApplicationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if configure != nil {
		configure(b.loggingBuilder)
	}
	return b
}

// ConfigureServices 配置服务
func (b *ApplicationBuilder) ConfigureServices(configure func(*ServiceCollection)) *ApplicationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if configure != nil {
		b.serviceConfigurators = append(b.serviceConfigurators, configure)
	}
	return b
}

// Configure 添加配置器（支持链式调用和可变参数）
// 接受 Configurator 或任何 func(*BuildContext) 类型的函数
func (b *ApplicationBuilder) Configure(configurators ...interface{}) *ApplicationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range configurators {
		switch fn := c.(type) {
		case Configurator:
			b.configurators = append(b.configurators, fn)
		case func(*BuildContext):
			b.configurators = append(b.configurators, fn)
		default:
			panic(fmt.Sprintf("configurator must be func(*BuildContext), got %T", c))
		}
	}

	return b
}

// AddExtension 添加应用程序扩展
func (b *ApplicationBuilder) AddExtension(ext Extension) *ApplicationBuilder {
	validateExtension(ext)

	b.mu.Lock()
	defer b.mu.Unlock()

	if sc, ok := ext.(ServiceConfigurator); ok {
		b.serviceConfigurators = append(b.serviceConfigurators, sc.ConfigureServices)
	}
	if ac, ok := ext.(AppConfigurator); ok {
		b.configurators = append(b.configurators, ac.ConfigureBuilder)
	}

	return b
}

// AddOptions 注册配置选项（语法糖，简化配置选项注册）
// 使用示例: core.AddOptions[AppSetting](builder, "app")
func AddOptions[T any](b *ApplicationBuilder, section string) *ApplicationBuilder {
	return b.Configure(func(ctx *BuildContext) {
		ConfigureOptions[T](ctx, section)
	})
}

// AddTask 添加一个简单的后台任务
func (b *ApplicationBuilder) AddTask(task func(ctx context.Context) error) *ApplicationBuilder {
	b.Configure(func(ctx *BuildContext) {
		ctx.AddHostedService(&functionalService{task: task})
	})
	return b
}

// functionalService 函数式托管服务
type functionalService struct {
	task func(ctx context.Context) error
}

func (f *functionalService) Start(ctx context.Context) error {
	return f.task(ctx)
}

func (f *functionalService) Stop(ctx context.Context) error {
	return nil
}

// UseShutdownTimeout 设置关闭超时
func (b *ApplicationBuilder) UseShutdownTimeout(timeout time.Duration) *ApplicationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shutdownTimeout = timeout
	return b
}

// Build 构建应用程序
func (b *ApplicationBuilder) Build() Application {
	b.mu.Lock()
	defer b.mu.Unlock()

	// 构建可重载的配置
	reloadableConfig, err := b.configBuilder.BuildReloadable()
	if err != nil {
		panic(fmt.Sprintf("Failed to build configuration: %v", err))
	}

	// 构建日志工厂
	loggerFactory := b.loggingBuilder.Build()
	logger := loggerFactory.CreateLogger("Application")

	logger.Info("Building application",
		logging.Field{Key: "environment", Value: b.environment})

	// 创建 DI 容器
	var containerOpts []di.ContainerOption
	if b.eagerInit || boolSetting(reloadableConfig, "beans:eager_init") {
		containerOpts = append(containerOpts, di.WithEagerInit())
	}
	container := di.NewContainer(containerOpts...)

	// 注册核心值 bean：配置、日志工厂、应用级 Logger
	// 接口类型的请求（如 config.Configuration）由容器按实现类型匹配，
	// 容器自身无需注册，构造参数声明 di.Container 时由解析器直接注入
	if err := container.Provide(
		di.ValueProvider{Provide: di.TypeOf[*config.ReloadableConfiguration](), Value: reloadableConfig},
		di.ValueProvider{Provide: di.TypeOf[logging.LoggerFactory](), Value: loggerFactory},
		di.ValueProvider{Provide: di.TypeOf[logging.Logger](), Value: logger},
	); err != nil {
		logger.Fatal("Failed to register core services",
			logging.Field{Key: "error", Value: err.Error()})
	}

	// 创建服务集合
	services := &ServiceCollection{
		container: container,
		logger:    logger,
	}

	// 创建 BuildContext
	buildContext := &BuildContext{
		container:      container,
		configuration:  reloadableConfig,
		logger:         logger,
		environment:    NewEnvironment(b.environment),
		hostedServices: make([]hosting.HostedService, 0),
		cleanups:       make(map[string]func()),
	}

	// 执行所有配置器
	for _, configurator := range b.configurators {
		configurator(buildContext)
	}

	// 配置用户服务
	for _, configurator := range b.serviceConfigurators {
		configurator(services)
	}

	// 构建容器
	if err := container.Build(); err != nil {
		logger.Fatal("Failed to build DI container",
			logging.Field{Key: "error", Value: err.Error()})
	}

	logger.Info("DI container built successfully")

	// 合并托管服务：
	// 1. BuildContext 直接添加的实例
	// 2. 容器中所有实现 HostedService 的 bean（按接口扫描发现）
	// 同一实例可能同时被显式添加和注册进容器，按实例去重避免重复启动
	hostedServices := append([]hosting.HostedService{}, buildContext.hostedServices...)

	discovered, err := di.ResolveAll[hosting.HostedService](container)
	if err != nil {
		logger.Fatal("Failed to resolve hosted services",
			logging.Field{Key: "error", Value: err.Error()})
	}
	for _, hs := range discovered {
		if containsHostedService(hostedServices, hs) {
			continue
		}
		logger.Debug("Discovered hosted service",
			logging.Field{Key: "type", Value: fmt.Sprintf("%T", hs)})
		hostedServices = append(hostedServices, hs)
	}

	app := &application{
		container:       container,
		configuration:   reloadableConfig,
		loggerFactory:   loggerFactory,
		logger:          logger,
		environment:     NewEnvironment(b.environment),
		hostedServices:  hostedServices,
		cleanups:        buildContext.cleanups,
		shutdownTimeout: b.shutdownTimeout,
		stopCh:          make(chan struct{}),
	}

	return app
}

// boolSetting 读取布尔配置键，缺失或类型不符时返回 false
func boolSetting(cfg config.Configuration, key string) bool {
	value, err := cfg.GetBool(key)
	return err == nil && value
}

// containsHostedService 判断服务实例是否已在列表中。
// 不可比较的动态类型无法判定，视为未包含。
func containsHostedService(services []hosting.HostedService, target hosting.HostedService) bool {
	targetVal := reflect.ValueOf(target)
	if !targetVal.IsValid() || !targetVal.Comparable() {
		return false
	}
	for _, service := range services {
		val := reflect.ValueOf(service)
		if val.IsValid() && val.Comparable() && val.Equal(targetVal) {
			return true
		}
	}
	return false
}

// application 应用程序实现
type application struct {
	container       di.Container
	configuration   *config.ReloadableConfiguration
	loggerFactory   logging.LoggerFactory
	logger          logging.Logger
	environment     Environment
	hostedServices  []hosting.HostedService
	serviceManager  *hosting.HostedServiceManager
	cleanups        map[string]func()
	shutdownTimeout time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
	running         bool
	runCtx          context.Context
	runCancel       context.CancelFunc
	mu              sync.RWMutex
}

// Run 运行应用程序（阻塞）
func (a *application) Run() error {
	return a.RunAsync(context.Background())
}

// RunAsync 异步运行应用程序
func (a *application) RunAsync(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return errors.New("application is already running")
	}
	a.running = true

	// 创建可取消的 context 用于运行服务
	a.runCtx, a.runCancel = context.WithCancel(ctx)
	a.mu.Unlock()

	a.logger.Info("Starting application",
		logging.Field{Key: "environment", Value: a.environment.Name()})

	// 启动配置源的变更监听，变更触发自动重载
	sources := a.configuration.Sources()
	watchErrs := a.configuration.StartWatching(a.runCtx, func(err error) {
		if err != nil {
			a.logger.Error("Failed to reload configuration",
				logging.Field{Key: "error", Value: err.Error()})
		} else {
			a.logger.Info("Configuration reloaded successfully")
		}
	})
	for i, err := range watchErrs {
		if err != nil {
			a.logger.Warn("Failed to start config watch",
				logging.Field{Key: "source", Value: sources[i].Name()},
				logging.Field{Key: "error", Value: err.Error()})
		}
	}

	// 创建托管服务管理器并启动全部服务
	a.serviceManager = hosting.NewHostedServiceManager(a.logger)
	for _, service := range a.hostedServices {
		a.serviceManager.Add(service)
	}

	errCh := a.serviceManager.StartAll(a.runCtx)

	a.logger.Info("Application started successfully")

	// 等待停止信号或服务错误
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error

	select {
	case sig := <-sigCh:
		a.logger.Info("Received shutdown signal",
			logging.Field{Key: "signal", Value: sig.String()})
	case <-a.stopCh:
		a.logger.Info("Application stop requested")
	case <-ctx.Done():
		a.logger.Info("Context cancelled")
	case err := <-errCh:
		a.logger.Error("Hosted service failed, stopping application",
			logging.Field{Key: "error", Value: err.Error()})
		runErr = err
	}

	a.shutdown()

	a.mu.Lock()
	a.running = false
	a.mu.Unlock()

	return runErr
}

// shutdown 优雅关闭：停服务、停监听、销毁容器、执行清理、刷新日志
func (a *application) shutdown() {
	a.logger.Info("Shutting down application",
		logging.Field{Key: "timeout", Value: a.shutdownTimeout.String()})

	// 取消运行 context，通知所有服务停止
	a.runCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.serviceManager.StopAll(shutdownCtx); err != nil {
		a.logger.Error("Failed to stop hosted services",
			logging.Field{Key: "error", Value: err.Error()})
	}
	a.serviceManager.Wait()

	a.configuration.StopWatching()

	// 销毁容器内受管实例（逆创建顺序执行 PreDestroy 等钩子）
	if err := a.container.Close(); err != nil {
		a.logger.Error("Failed to dispose container",
			logging.Field{Key: "error", Value: err.Error()})
	}

	// 执行注册的清理函数
	if len(a.cleanups) > 0 {
		a.logger.Info("Running cleanup functions",
			logging.Field{Key: "count", Value: len(a.cleanups)})
		for key, cleanup := range a.cleanups {
			a.logger.Debug("Running cleanup",
				logging.Field{Key: "key", Value: key})
			cleanup()
		}
	}

	a.logger.Info("Application stopped")

	// 最后刷新日志，保证关闭期间的条目落盘
	if err := a.loggerFactory.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close logger factory: %v\n", err)
	}
}

// Stop 停止应用程序（可安全地多次调用）
func (a *application) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		close(a.stopCh)
	})
	return nil
}

// Services 获取服务容器
func (a *application) Services() di.Container {
	return a.container
}

// Configuration 获取配置
func (a *application) Configuration() config.Configuration {
	return a.configuration
}

// Logger 获取日志记录器
func (a *application) Logger() logging.Logger {
	return a.logger
}

// Environment 获取环境
func (a *application) Environment() Environment {
	return a.environment
}

// GetService 获取服务实例（通过指针参数）
//
// 使用示例：
//
//	var myService *MyService
//	app.GetService(&myService)
func (a *application) GetService(ptr any) {
	ptrValue := reflect.ValueOf(ptr)
	if ptrValue.Kind() != reflect.Pointer {
		panic(fmt.Sprintf("beans: GetService argument must be a pointer, got %T", ptr))
	}

	elemValue := ptrValue.Elem()
	if !elemValue.CanSet() {
		panic("beans: GetService argument must be settable")
	}

	targetType := elemValue.Type()
	instance, err := a.container.Get(targetType)
	if err != nil {
		panic(fmt.Sprintf("beans: failed to get service %s: %v", targetType.String(), err))
	}

	elemValue.Set(reflect.ValueOf(instance))
}

// ServiceCollection 服务集合
type ServiceCollection struct {
	container di.Container
	logger    logging.Logger
}

// Container 返回底层 DI 容器
func (s *ServiceCollection) Container() di.Container {
	return s.container
}

// AddHostedService 注册托管服务（支持实例或构造函数）
// 服务作为单例 bean 注册，应用构建完成后按 HostedService 接口统一发现并启动
func (s *ServiceCollection) AddHostedService(value any) {
	typ, err := di.RegisterAuto(s.container, value)
	if err != nil {
		s.logger.Error("Failed to register hosted service",
			logging.Field{Key: "error", Value: err.Error()})
		return
	}

	hostedType := reflect.TypeOf((*hosting.HostedService)(nil)).Elem()
	if typ != nil && !typ.Implements(hostedType) {
		s.logger.Warn("Registered service does not implement HostedService and will not be started",
			logging.Field{Key: "type", Value: typ.String()})
	}
}

// Environment 环境接口
type Environment interface {
	Name() string
	IsDevelopment() bool
	IsProduction() bool
	IsStaging() bool
}

// environment 环境实现
type environment struct {
	name string
}

// NewEnvironment 创建环境
func NewEnvironment(name string) Environment {
	return &environment{name: name}
}

func (e *environment) Name() string {
	return e.name
}

func (e *environment) IsDevelopment() bool {
	return e.name == "development"
}

func (e *environment) IsProduction() bool {
	return e.name == "production"
}

func (e *environment) IsStaging() bool {
	return e.name == "staging"
}
