package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

const (
	animalMessage = "Feeding an animal"
	dogMessage    = "Feeding a dog"
)

// Animal is a marker capability. It has no public operations; the
// unexported method keeps unrelated types from satisfying it.
type Animal interface {
	isAnimal()
}

// Dog is a zero-state Animal.
type Dog struct{}

func (*Dog) isAnimal() {}

var _ Animal = (*Dog)(nil)

// AnimalFeeder accepts anything satisfying Animal.
type AnimalFeeder func(Animal)

// DogFeeder accepts dogs only.
type DogFeeder func(*Dog)

// Widen lets a function that feeds any animal serve where a DogFeeder is
// expected. Every *Dog is an Animal, so the call can never receive less
// than f needs. There is no reverse adapter: a DogFeeder bound into an
// AnimalFeeder could be handed a non-dog Animal.
func Widen(f AnimalFeeder) DogFeeder {
	return func(d *Dog) { f(d) }
}

// Keeper writes feeding messages to out, one per line.
type Keeper struct {
	out    io.Writer
	logger *slog.Logger
	err    error
}

func NewKeeper(out io.Writer, logger *slog.Logger) *Keeper {
	return &Keeper{out: out, logger: logger}
}

// FeedAnimal feeds anything satisfying Animal. Only the capability is
// visible here; the concrete type has been erased.
func (k *Keeper) FeedAnimal(a Animal) {
	if k.logger.Enabled(context.Background(), slog.LevelDebug) {
		k.logger.Debug("feeding", "capability", "Animal", "type", fmt.Sprintf("%T", a))
	}
	k.say(animalMessage)
}

// FeedDog serves the dog, then feeds it again through its Animal
// capability.
func (k *Keeper) FeedDog(d *Dog) {
	k.ServeDog(d)
	k.FeedAnimal(d)
}

// ServeDog is the dog-only part of FeedDog.
func (k *Keeper) ServeDog(d *Dog) {
	k.logger.Debug("feeding", "capability", "Dog")
	k.say(dogMessage)
}

// Run feeds one dog through every supported path: direct calls, a call
// with the concrete type widened to Animal, and calls through function
// variables of both feeder types.
func (k *Keeper) Run() {
	dog := &Dog{}

	k.FeedDog(dog)
	k.FeedAnimal(dog)

	var animal Animal = dog
	k.FeedAnimal(animal)

	var animalFeeder AnimalFeeder = k.FeedAnimal
	animalFeeder(dog)

	var dogFeeder DogFeeder = k.ServeDog
	dogFeeder(dog)
}

// Err returns the first error met while writing output, if any.
func (k *Keeper) Err() error {
	return k.err
}

func (k *Keeper) say(msg string) {
	if k.err != nil {
		return
	}
	if _, err := fmt.Fprintln(k.out, msg); err != nil {
		k.logger.Error("failed to write feeding message", "error", err)
		k.err = fmt.Errorf("writing %q: %w", msg, err)
	}
}
