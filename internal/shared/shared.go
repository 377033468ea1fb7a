// Package shared provides a single-owner handle with non-owning observers.
//
// An Owner is the only handle that can consume the value it wraps. Other
// components receive a Ref obtained through Owner.Downgrade. A Ref never keeps
// the value alive for the owner: it can only lease the value for the duration
// of a call, and the lease must be released before the owner is consumed.
//
//	owner := shared.New(&filterBuilder{})
//	ref := owner.Downgrade()
//
//	f, release := ref.MustUpgrade()
//	defer release()
//	f.WhereInput(model)
//
// Owner.Take consumes the owner. It panics if any lease is still outstanding,
// since that means a Ref escaped the scope it was handed out for.
//
// The types are not safe for concurrent use.
package shared

import "fmt"

// Owner is the sole owning handle to a value of type T.
type Owner[T any] struct {
	value  *T
	leases int
	taken  bool
}

// New wraps v in an Owner. It panics if v is nil.
func New[T any](v *T) *Owner[T] {
	if v == nil {
		panic("shared: nil value")
	}
	return &Owner[T]{value: v}
}

// Get returns the owned value. It panics after Take.
func (o *Owner[T]) Get() *T {
	if o.taken {
		panic(fmt.Sprintf("shared: %T used after it was taken", o.value))
	}
	return o.value
}

// Downgrade returns a non-owning reference to the value.
func (o *Owner[T]) Downgrade() Ref[T] {
	return Ref[T]{owner: o}
}

// Leases returns the number of leases that have not been released yet.
func (o *Owner[T]) Leases() int {
	return o.leases
}

// Taken reports whether the owner has been consumed.
func (o *Owner[T]) Taken() bool {
	return o.taken
}

// TryTake consumes the owner and returns the value. It fails if the owner was
// already taken or if a Ref still holds a lease.
func (o *Owner[T]) TryTake() (*T, error) {
	if o.taken {
		return nil, fmt.Errorf("shared: %T already taken", o.value)
	}
	if o.leases != 0 {
		return nil, fmt.Errorf("shared: %d outstanding lease(s) on %T", o.leases, o.value)
	}
	v := o.value
	o.value = nil
	o.taken = true
	return v, nil
}

// Take is like TryTake but panics on failure.
func (o *Owner[T]) Take() *T {
	v, err := o.TryTake()
	if err != nil {
		panic(err)
	}
	return v
}

// Ref is a non-owning reference to a value held by an Owner. The zero Ref
// refers to nothing.
type Ref[T any] struct {
	owner *Owner[T]
}

// Upgrade leases the referenced value. The returned function releases the
// lease and must be called exactly once. ok is false when the Ref is zero or
// the owner has already been taken; release is then a no-op.
func (r Ref[T]) Upgrade() (v *T, release func(), ok bool) {
	if r.owner == nil || r.owner.taken {
		return nil, func() {}, false
	}
	o := r.owner
	o.leases++
	released := false
	return o.value, func() {
		if released {
			return
		}
		released = true
		o.leases--
	}, true
}

// MustUpgrade is like Upgrade but panics when the value is gone.
func (r Ref[T]) MustUpgrade() (*T, func()) {
	v, release, ok := r.Upgrade()
	if !ok {
		var zero *T
		panic(fmt.Sprintf("shared: %T referenced after its owner was taken", zero))
	}
	return v, release
}
