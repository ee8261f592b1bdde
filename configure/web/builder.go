package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/logging"
)

// Controller 控制器接口。实现该接口的 Bean 在主机启动时
// 从容器解析出来并注册自己的路由。
type Controller interface {
	RegisterRoutes(router gin.IRouter)
}

// Builder Web 主机构建器（基于 Gin）
type Builder struct {
	logger      logging.Logger
	port        int
	engine      *gin.Engine
	controllers []any
}

// NewBuilder 创建 Web 构建器
func NewBuilder(logger logging.Logger) *Builder {
	// 设置 Gin 为发布模式（默认）
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	// 默认中间件：恢复 panic
	engine.Use(gin.Recovery())

	return &Builder{
		logger: logger,
		port:   8080,
		engine: engine,
	}
}

// UsePort 设置端口。端口 0 表示由系统分配，实际地址通过 Host.Address 获取
func (b *Builder) UsePort(port int) *Builder {
	b.port = port
	return b
}

// AddControllers 添加控制器。接受构造函数或实例指针，
// 在 Build 时注册到容器，路由映射推迟到主机启动。
func (b *Builder) AddControllers(controllers ...any) *Builder {
	b.controllers = append(b.controllers, controllers...)
	return b
}

// Get 注册 GET 路由
func (b *Builder) Get(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.GET(path, handlers...)
	return b
}

// Post 注册 POST 路由
func (b *Builder) Post(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.POST(path, handlers...)
	return b
}

// Put 注册 PUT 路由
func (b *Builder) Put(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.PUT(path, handlers...)
	return b
}

// Delete 注册 DELETE 路由
func (b *Builder) Delete(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.DELETE(path, handlers...)
	return b
}

// Patch 注册 PATCH 路由
func (b *Builder) Patch(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.PATCH(path, handlers...)
	return b
}

// Any 注册任意方法路由
func (b *Builder) Any(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.Any(path, handlers...)
	return b
}

// Group 创建路由组
func (b *Builder) Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return b.engine.Group(relativePath, handlers...)
}

// Use 使用全局中间件
func (b *Builder) Use(middleware ...gin.HandlerFunc) *Builder {
	b.engine.Use(middleware...)
	return b
}

// Static 服务静态文件
func (b *Builder) Static(relativePath, root string) *Builder {
	b.engine.Static(relativePath, root)
	return b
}

// StaticFS 服务静态文件系统
func (b *Builder) StaticFS(relativePath string, fs http.FileSystem) *Builder {
	b.engine.StaticFS(relativePath, fs)
	return b
}

// StaticFile 服务单个静态文件
func (b *Builder) StaticFile(relativePath, filepath string) *Builder {
	b.engine.StaticFile(relativePath, filepath)
	return b
}

// LoadHTMLGlob 加载 HTML 模板（通配符）
func (b *Builder) LoadHTMLGlob(pattern string) *Builder {
	b.engine.LoadHTMLGlob(pattern)
	return b
}

// LoadHTMLFiles 加载 HTML 模板（文件列表）
func (b *Builder) LoadHTMLFiles(files ...string) *Builder {
	b.engine.LoadHTMLFiles(files...)
	return b
}

// NoRoute 处理 404
func (b *Builder) NoRoute(handlers ...gin.HandlerFunc) *Builder {
	b.engine.NoRoute(handlers...)
	return b
}

// NoMethod 处理 405
func (b *Builder) NoMethod(handlers ...gin.HandlerFunc) *Builder {
	b.engine.NoMethod(handlers...)
	return b
}

// SetMode 设置 Gin 模式
func (b *Builder) SetMode(mode string) *Builder {
	gin.SetMode(mode)
	return b
}

// Engine 获取 Gin 引擎（用于高级定制）
func (b *Builder) Engine() *gin.Engine {
	return b.engine
}

// Build 构建 Web 主机，并把收集的控制器注册到容器。
// 注册失败（例如重复注册）只记录警告，类型仍保留供路由映射使用。
func (b *Builder) Build(container di.Container) *Host {
	types := make([]reflect.Type, 0, len(b.controllers))
	for _, target := range b.controllers {
		typ := controllerServiceType(target)
		if typ == nil {
			b.logger.Warn("Controller must be a constructor function or a pointer instance",
				logging.Field{Key: "target", Value: fmt.Sprintf("%T", target)})
			continue
		}

		if _, err := di.RegisterAuto(container, target); err != nil {
			b.logger.Warn("Failed to register controller",
				logging.Field{Key: "controller", Value: typ.String()},
				logging.Field{Key: "error", Value: err.Error()})
		}
		types = append(types, typ)
	}

	return &Host{
		port:            b.port,
		engine:          b.engine,
		server:          &http.Server{Handler: b.engine},
		logger:          b.logger,
		container:       container,
		controllerTypes: types,
	}
}

// controllerServiceType 推断控制器在容器中的服务类型
func controllerServiceType(target any) reflect.Type {
	val := reflect.ValueOf(target)
	switch val.Kind() {
	case reflect.Func:
		fnType := val.Type()
		if fnType.NumOut() == 0 {
			return nil
		}
		return fnType.Out(0)
	case reflect.Pointer:
		return val.Type()
	default:
		return nil
	}
}

// Host Web 主机
type Host struct {
	port            int
	engine          *gin.Engine
	server          *http.Server
	logger          logging.Logger
	container       di.Container
	controllerTypes []reflect.Type

	mu       sync.Mutex
	listener net.Listener
}

// Address 返回实际监听地址。主机启动前返回空字符串
func (h *Host) Address() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

// mapControllers 从容器解析控制器并注册路由。
// 重复的类型只映射一次，避免向 Gin 重复注册同一路由。
func (h *Host) mapControllers() error {
	if h.container == nil {
		return nil
	}

	seen := make(map[reflect.Type]bool, len(h.controllerTypes))
	for _, typ := range h.controllerTypes {
		if seen[typ] {
			continue
		}
		seen[typ] = true

		instance, err := h.container.Get(typ)
		if err != nil {
			return fmt.Errorf("web: failed to resolve controller %s: %w", typ, err)
		}

		controller, ok := instance.(Controller)
		if !ok {
			return fmt.Errorf("web: controller %s does not implement RegisterRoutes(gin.IRouter)", typ)
		}

		controller.RegisterRoutes(h.engine)
		h.logger.Debug("Controller routes mapped",
			logging.Field{Key: "controller", Value: typ.String()})
	}
	return nil
}

// Start 启动 Web 主机。先映射控制器路由，再开始监听
func (h *Host) Start(ctx context.Context) error {
	if err := h.mapControllers(); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", h.port))
	if err != nil {
		return fmt.Errorf("web: failed to listen on port %d: %w", h.port, err)
	}

	h.mu.Lock()
	h.listener = listener
	h.mu.Unlock()

	h.logger.Info("Web host started",
		logging.Field{Key: "address", Value: listener.Addr().String()})

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 等待错误或上下文取消
	select {
	case err := <-errCh:
		if err != nil {
			h.logger.Error("Web host error",
				logging.Field{Key: "error", Value: err.Error()})
			return err
		}
		return nil
	case <-ctx.Done():
		return nil // 关闭由 Stop 负责
	}
}

// Stop 停止 Web 主机
func (h *Host) Stop(ctx context.Context) error {
	h.logger.Info("Stopping web host")

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Error("Failed to shutdown web host gracefully",
			logging.Field{Key: "error", Value: err.Error()})
		return err
	}

	h.logger.Info("Web host stopped")
	return nil
}
