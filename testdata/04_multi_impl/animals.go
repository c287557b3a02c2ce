package animals

type Speaker interface {
	Speak() string
}

type Dog struct{}

func (d Dog) Speak() string { return "woof" }

type Cat struct{}

func (c Cat) Speak() string { return "meow" }

func (c Cat) String() string { return "cat" }

type Parrot struct{ word string }

func (p *Parrot) Speak() string { return p.word }

type Fish struct{} // no Speak

type Listener func(Speaker)

type DogListener func(Dog)

func Listen(s Speaker) {}

func listenQuietly(s Speaker) {}
