package feed

import "fmt"

type Animal interface {
	isAnimal()
}

type Dog struct{}

func (*Dog) isAnimal() {}

type AnimalFeeder func(Animal)

type DogFeeder func(*Dog)

func FeedAnimal(a Animal) {
	fmt.Println("Feeding an animal")
}

func FeedDog(d *Dog) {
	fmt.Println("Feeding a dog")
	FeedAnimal(d)
}

func Widen(f AnimalFeeder) DogFeeder {
	return func(d *Dog) { f(d) }
}

var (
	animalFeeder AnimalFeeder = FeedAnimal
	dogFeeder    DogFeeder    = FeedDog
	widened      DogFeeder    = Widen(FeedAnimal)
)
