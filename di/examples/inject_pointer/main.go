package main

import (
	"fmt"

	"github.com/gocrud/beans/di"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	GetUserByID(id int) string
}

// UserRepositoryImpl 用户仓储实现
type UserRepositoryImpl struct {
	DBName string
}

func (r *UserRepositoryImpl) GetUserByID(id int) string {
	return fmt.Sprintf("User %d from %s", id, r.DBName)
}

// UserService 用户服务
type UserService struct {
	Repo UserRepository `di:""`
}

func (s *UserService) GetUser(id int) {
	user := s.Repo.GetUserByID(id)
	fmt.Println("UserService:", user)
}

// OrderService 订单服务
type OrderService struct {
	UserRepo UserRepository `di:""`
}

func (s *OrderService) CreateOrder(userID int) {
	user := s.UserRepo.GetUserByID(userID)
	fmt.Printf("Creating order for %s\n", user)
}

func main() {
	// 创建容器
	container := di.NewContainer()

	// 注册依赖
	di.BindWith[UserRepository](container, &UserRepositoryImpl{DBName: "MySQL"})
	container.Provide(&UserService{})
	container.Provide(&OrderService{})

	// 构建容器
	if err := container.Build(); err != nil {
		panic(err)
	}

	fmt.Println("=== 演示: di.Resolve 模式 ===")
	fmt.Println()

	// 方式1: 解析接口
	fmt.Println("--- 1. 解析接口 ---")
	repo, err := di.Resolve[UserRepository](container)
	if err != nil {
		panic(err)
	}
	fmt.Println(repo.GetUserByID(1))

	// 方式2: 解析服务（结构体指针）
	fmt.Println("\n--- 2. 解析服务 ---")
	userSvc, err := di.Resolve[*UserService](container)
	if err != nil {
		panic(err)
	}
	userSvc.GetUser(2)

	orderSvc, err := di.Resolve[*OrderService](container)
	if err != nil {
		panic(err)
	}
	orderSvc.CreateOrder(3)

	// 方式3: 底层 reflect.Type API（框架集成场景）
	fmt.Println("\n--- 3. 底层 Get API ---")
	instance, err := container.Get(di.TypeOf[*UserService]())
	if err != nil {
		panic(err)
	}
	instance.(*UserService).GetUser(5)
}
