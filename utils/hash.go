package utils

import "github.com/benbjohnson/immutable"

type (
	// Hashable is implemented by all hashable types.
	Hashable interface {
		Hash() uint32
	}
	// HashableEq is implemented by all hashable types that can be compared for equality.
	HashableEq[T any] interface {
		Hashable
		Equal(T) bool
	}

	// hashableHasher is a hasher for hashable and equality comparable entities.
	hashableHasher[T HashableEq[T]] struct{}
)

func (hashableHasher[T]) Equal(a, b T) bool { return a.Equal(b) }

func (hashableHasher[T]) Hash(a T) uint32 { return a.Hash() }

// HashableHasher keys persistent maps by CFA nodes and other hashable values.
func HashableHasher[T HashableEq[T]]() immutable.Hasher[T] { return hashableHasher[T]{} }
