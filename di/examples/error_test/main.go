package main

import "github.com/gocrud/beans/di"

type ConcreteService struct {
	Name string
}

func main() {
	di.Reset()

	// TypeProvider 只接受接口类型，指针类型应该报错
	err := di.ProvideType(di.TypeProvider{
		Provide: di.TypeOf[*ConcreteService](), // 这是指针类型，不是接口
		UseType: &ConcreteService{Name: "test"},
	})
	if err == nil {
		panic("expected an error for non-interface Provide type")
	}
	println("expected error:", err.Error())

	// 具体类型直接用 Provide 注册
	if err := di.Provide(&ConcreteService{Name: "test"}); err != nil {
		panic(err)
	}
	di.MustBuild()

	svc := di.Inject[*ConcreteService]()
	println("resolved:", svc.Name)
}
