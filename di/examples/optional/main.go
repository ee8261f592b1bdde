package main

import "github.com/gocrud/beans/di"

// 通知服务的依赖：日志必需，限流器和审计记录可选

type Logger interface {
	Log(msg string)
}

type RateLimiter interface {
	Allow(key string) bool
}

type AuditTrail interface {
	Record(event string)
}

type ConsoleLogger struct {
	Prefix string
}

func (l *ConsoleLogger) Log(msg string) {
	println(l.Prefix + ": " + msg)
}

type TokenBucket struct{}

func (t *TokenBucket) Allow(key string) bool { return true }

type MemoryAudit struct {
	events []string
}

func (a *MemoryAudit) Record(event string) {
	a.events = append(a.events, event)
}

// NotifyService 演示可选依赖：未注册的可选字段保持 nil
type NotifyService struct {
	Logger  Logger      `di:""`  // 必需
	Limiter RateLimiter `di:"?"` // 可选
	Audit   AuditTrail  `di:"?"` // 可选
}

func (s *NotifyService) Send(user, text string) {
	if s.Limiter != nil && !s.Limiter.Allow(user) {
		s.Logger.Log("rate limited: " + user)
		return
	}

	s.Logger.Log("notify " + user + ": " + text)

	if s.Audit != nil {
		s.Audit.Record("notify:" + user)
	}
}

func main() {
	// 场景 1: 只注册必需依赖，可选字段保持 nil
	println("=== 1: 最小依赖 ===")
	di.Reset()
	di.Bind[Logger](&ConsoleLogger{Prefix: "APP"})
	di.Provide(&NotifyService{})
	di.MustBuild()

	svc := di.Inject[*NotifyService]()
	svc.Send("alice", "welcome")

	// 场景 2: InjectOrDefault 为缺席的依赖提供后备实现
	println("\n=== 2: InjectOrDefault ===")
	limiter := di.InjectOrDefault[RateLimiter](&TokenBucket{})
	println("limiter ready:", limiter != nil)

	// 场景 3: 注册全部依赖
	println("\n=== 3: 完整依赖 ===")
	di.Reset()
	di.Bind[Logger](&ConsoleLogger{Prefix: "APP"})
	di.Bind[RateLimiter](&TokenBucket{})
	di.Bind[AuditTrail](&MemoryAudit{})
	di.Provide(&NotifyService{})
	di.MustBuild()

	svc = di.Inject[*NotifyService]()
	svc.Send("bob", "hello")

	// 场景 4: TryInject 探测依赖是否注册
	println("\n=== 4: TryInject ===")
	if audit, err := di.TryInject[AuditTrail](); err == nil {
		println("audit available:", audit != nil)
	} else {
		println("audit not available:", err.Error())
	}

	type Unregistered interface{ Ping() }
	if _, err := di.TryInject[Unregistered](); err != nil {
		println("unregistered type not found (expected):", err.Error())
	}
}
