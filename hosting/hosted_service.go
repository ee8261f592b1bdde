package hosting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gocrud/beans/logging"
)

// HostedService 托管服务接口（类似于 .NET Core IHostedService）
// 框架会自动在 goroutine 中调用 Start，用户无需自己启动 goroutine
type HostedService interface {
	// Start 启动服务。该方法应阻塞执行，直到 context 被取消或发生错误。
	// 框架会在独立的 goroutine 中调用此方法。
	Start(ctx context.Context) error

	// Stop 执行优雅关闭逻辑。
	// 注意：当 Start 的 context 被取消时，服务应自动停止。
	// Stop 方法用于执行额外的清理工作（可选）。
	Stop(ctx context.Context) error
}

// HostedServiceManager 托管服务管理器
type HostedServiceManager struct {
	services []HostedService
	logger   logging.Logger
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

// NewHostedServiceManager 创建托管服务管理器
func NewHostedServiceManager(logger logging.Logger) *HostedServiceManager {
	return &HostedServiceManager{
		services: make([]HostedService, 0),
		logger:   logger,
	}
}

// Add 添加托管服务
func (m *HostedServiceManager) Add(service HostedService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = append(m.services, service)
}

// StartAll 启动所有托管服务，每个服务在独立的 goroutine 中运行
// 返回的通道会收到首个真正失败的服务错误（context 取消不算失败）
func (m *HostedServiceManager) StartAll(ctx context.Context) <-chan error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// 缓冲区大小等于服务数量，发送端永不阻塞
	errCh := make(chan error, len(m.services))

	m.logger.Info(fmt.Sprintf("Starting %d hosted services", len(m.services)))

	for _, service := range m.services {
		m.wg.Add(1)
		go func(svc HostedService) {
			defer m.wg.Done()

			name := serviceName(svc)
			m.logger.Debug(fmt.Sprintf("Starting hosted service %s", name))

			err := svc.Start(ctx)
			if err == nil {
				m.logger.Info(fmt.Sprintf("Hosted service %s completed", name))
				return
			}

			// 区分正常的 context 取消和真正的错误
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				m.logger.Debug(fmt.Sprintf("Hosted service %s stopped (context done)", name))
				return
			}

			m.logger.Error(fmt.Sprintf("Hosted service %s error", name),
				logging.Field{Key: "error", Value: err.Error()})
			errCh <- fmt.Errorf("hosting: service %s failed: %w", name, err)
		}(service)
	}

	return errCh
}

// StopAll 反向并发停止所有托管服务
func (m *HostedServiceManager) StopAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.logger.Info(fmt.Sprintf("Stopping %d hosted services", len(m.services)))

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var errs []error

	for i := len(m.services) - 1; i >= 0; i-- {
		service := m.services[i]

		wg.Add(1)
		go func(svc HostedService) {
			defer wg.Done()

			name := serviceName(svc)
			m.logger.Debug(fmt.Sprintf("Stopping hosted service %s", name))

			if err := svc.Stop(ctx); err != nil {
				m.logger.Error(fmt.Sprintf("Failed to stop hosted service %s", name),
					logging.Field{Key: "error", Value: err.Error()})
				errMu.Lock()
				errs = append(errs, fmt.Errorf("hosting: stop %s: %w", name, err))
				errMu.Unlock()
			} else {
				m.logger.Debug(fmt.Sprintf("Hosted service %s stopped", name))
			}
		}(service)
	}

	wg.Wait()

	m.logger.Info("All hosted services stopped")
	return errors.Join(errs...)
}

// Wait 等待所有服务的 Start 返回
func (m *HostedServiceManager) Wait() {
	m.wg.Wait()
}

// serviceName 取服务的运行时类型名用于日志
func serviceName(svc HostedService) string {
	return fmt.Sprintf("%T", svc)
}

// BackgroundService 后台服务基类
type BackgroundService struct {
	name     string
	logger   logging.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	doneOnce sync.Once
}

// NewBackgroundService 创建后台服务
func NewBackgroundService(name string, logger logging.Logger) *BackgroundService {
	return &BackgroundService{
		name:   name,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Name 返回服务名称
func (s *BackgroundService) Name() string {
	return s.name
}

// Start 启动后台服务
func (s *BackgroundService) Start(ctx context.Context) error {
	s.logger.Info(fmt.Sprintf("BackgroundService '%s' starting", s.name))

	// 阻塞直到停止信号或上下文取消
	select {
	case <-s.stopCh:
		s.logger.Info(fmt.Sprintf("BackgroundService '%s' stopped by signal", s.name))
	case <-ctx.Done():
		s.logger.Info(fmt.Sprintf("BackgroundService '%s' context cancelled", s.name))
	}

	s.Done()
	return nil
}

// Stop 停止后台服务
func (s *BackgroundService) Stop(ctx context.Context) error {
	s.logger.Info(fmt.Sprintf("BackgroundService '%s' stopping", s.name))
	close(s.stopCh)

	// 等待服务停止或超时
	select {
	case <-s.doneCh:
		s.logger.Info(fmt.Sprintf("BackgroundService '%s' stopped gracefully", s.name))
	case <-ctx.Done():
		s.logger.Warn(fmt.Sprintf("BackgroundService '%s' stop timeout", s.name))
		return ctx.Err()
	}

	return nil
}

// ShouldStop 检查是否应该停止
func (s *BackgroundService) ShouldStop() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// StopChan 返回停止通道，用于在 select 中监听
func (s *BackgroundService) StopChan() <-chan struct{} {
	return s.stopCh
}

// Done 标记服务完成（幂等）
func (s *BackgroundService) Done() {
	s.doneOnce.Do(func() {
		close(s.doneCh)
	})
}

// TimedHostedService 定时托管服务，按固定间隔执行任务
type TimedHostedService struct {
	*BackgroundService
	interval time.Duration
	task     func(ctx context.Context) error
}

// NewTimedHostedService 创建定时托管服务
func NewTimedHostedService(name string, interval time.Duration, task func(ctx context.Context) error, logger logging.Logger) *TimedHostedService {
	return &TimedHostedService{
		BackgroundService: NewBackgroundService(name, logger),
		interval:          interval,
		task:              task,
	}
}

// Start 启动定时服务
func (s *TimedHostedService) Start(ctx context.Context) error {
	s.logger.Info(fmt.Sprintf("TimedHostedService '%s' running with interval %v", s.name, s.interval))
	return s.run(ctx)
}

func (s *TimedHostedService) run(ctx context.Context) error {
	defer s.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.task(ctx); err != nil {
				s.logger.Error(fmt.Sprintf("TimedHostedService '%s' task failed", s.name),
					logging.Field{Key: "error", Value: err.Error()})
			}
		case <-s.stopCh:
			s.logger.Info(fmt.Sprintf("TimedHostedService '%s' stopped", s.name))
			return nil
		case <-ctx.Done():
			s.logger.Info(fmt.Sprintf("TimedHostedService '%s' context cancelled", s.name))
			return ctx.Err()
		}
	}
}
