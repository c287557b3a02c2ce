package feed

type Animal interface {
	isAnimal()
}

type Dog struct{}

func (*Dog) isAnimal() {}

type AnimalFeeder func(Animal)

func FeedAnimal(a Animal) {}

// Cat is never declared.
var cat = Cat{}
