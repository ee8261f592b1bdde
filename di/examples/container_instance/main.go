package main

import (
	"fmt"

	"github.com/gocrud/beans/di"
)

// 定义接口
type Logger interface {
	Log(msg string)
}

type Database interface {
	Connect() error
}

// 实现
type ConsoleLogger struct {
	Prefix string
}

func (c *ConsoleLogger) Log(msg string) {
	fmt.Printf("%s: %s\n", c.Prefix, msg)
}

type MySQLDatabase struct {
	Host string
	Port int
}

func (m *MySQLDatabase) Connect() error {
	fmt.Printf("Connecting to MySQL at %s:%d\n", m.Host, m.Port)
	return nil
}

// 服务
type UserService struct {
	Logger Logger   `di:""`
	DB     Database `di:""`
}

func main() {
	fmt.Println("=== 示例1: 独立容器实例 ===")
	example1()

	fmt.Println("\n=== 示例2: 多容器隔离 ===")
	example2()

	fmt.Println("\n=== 示例3: 对外部实例做字段注入 ===")
	example3()
}

// 示例1: 独立容器实例
func example1() {
	// 创建独立容器实例
	container := di.NewContainer()

	// 使用容器实例的方法注册
	di.BindWith[Logger](container, &ConsoleLogger{Prefix: "INSTANCE"})
	di.BindWith[Database](container, &MySQLDatabase{Host: "localhost", Port: 3306})
	container.Provide(&UserService{})

	// 构建容器
	if err := container.Build(); err != nil {
		panic(err)
	}

	// 从容器实例解析
	logger, err := di.Resolve[Logger](container)
	if err != nil {
		panic(err)
	}
	logger.Log("Hello from container instance")

	db, err := di.Resolve[Database](container)
	if err != nil {
		panic(err)
	}
	db.Connect()

	svc, err := di.Resolve[*UserService](container)
	if err != nil {
		panic(err)
	}
	svc.Logger.Log("UserService initialized")
	svc.DB.Connect()
}

// 示例2: 多容器隔离
func example2() {
	// 创建两个独立的容器
	container1 := di.NewContainer()
	container2 := di.NewContainer()

	// 在container1中注册
	di.BindWith[Logger](container1, &ConsoleLogger{Prefix: "CONTAINER1"})
	container1.Build()

	// 在container2中注册
	di.BindWith[Logger](container2, &ConsoleLogger{Prefix: "CONTAINER2"})
	container2.Build()

	// 从不同容器获取实例
	logger1, err := di.Resolve[Logger](container1)
	if err != nil {
		panic(err)
	}
	logger2, err := di.Resolve[Logger](container2)
	if err != nil {
		panic(err)
	}

	logger1.Log("From container 1")
	logger2.Log("From container 2")
}

// 示例3: 对外部实例做字段注入
func example3() {
	// 创建独立容器实例
	container := di.NewContainer()

	// 注册依赖（注意：UserService 本身不注册）
	di.BindWith[Logger](container, &ConsoleLogger{Prefix: "INJECT"})
	di.BindWith[Database](container, &MySQLDatabase{Host: "localhost", Port: 3306})

	// 构建容器
	if err := container.Build(); err != nil {
		panic(err)
	}

	// 实例由调用方构造，容器只负责填充带 di 标签的字段
	svc := &UserService{}
	if err := container.Inject(svc); err != nil {
		panic(err)
	}
	svc.Logger.Log("fields injected into external instance")
	svc.DB.Connect()
}
