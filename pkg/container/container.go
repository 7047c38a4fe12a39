package container

import (
	"fmt"
	"reflect"
	"sync"
)

// Container is a small constructor-injection container used by main to wire
// config, calculator, session store and HTTP handlers.
//
//   - Provide registers a constructor returning T or (T, error)
//   - singleton providers are built once and cached
//   - Resolve fills a pointer by type; Invoke calls a function with resolved args
//
// Interface parameters resolve to any provider whose type implements them.
type Container struct {
	mu        sync.Mutex
	prov      map[reflect.Type]provider
	instances map[reflect.Type]reflect.Value
}

type provider struct {
	fn        reflect.Value
	singleton bool
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func New() *Container {
	return &Container{prov: make(map[reflect.Type]provider), instances: make(map[reflect.Type]reflect.Value)}
}

// Provide registers a constructor. Its parameters are resolved from the container.
func (c *Container) Provide(constructor interface{}, singleton bool) error {
	v := reflect.ValueOf(constructor)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("container: constructor must be a function, got %T", constructor)
	}
	ft := v.Type()
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return fmt.Errorf("container: constructor must return (T) or (T, error)")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out := ft.Out(0)
	if _, exists := c.prov[out]; exists {
		return fmt.Errorf("container: provider already exists for %v", out)
	}
	c.prov[out] = provider{fn: v, singleton: singleton}
	return nil
}

// Resolve populates target (a non-nil pointer) with an instance of its element type.
func (c *Container) Resolve(target interface{}) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return fmt.Errorf("container: target must be a non-nil pointer")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	val, err := c.build(ptr.Elem().Type(), map[reflect.Type]bool{})
	if err != nil {
		return err
	}
	ptr.Elem().Set(val)
	return nil
}

// Invoke calls fn with its parameters resolved. A trailing error result is returned.
func (c *Container) Invoke(fn interface{}) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("container: Invoke requires a function")
	}
	args, err := c.args(v.Type())
	if err != nil {
		return err
	}
	outs := v.Call(args)
	if n := len(outs); n > 0 && outs[n-1].Type() == errorType && !outs[n-1].IsNil() {
		return outs[n-1].Interface().(error)
	}
	return nil
}

func (c *Container) args(ft reflect.Type) ([]reflect.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		v, err := c.build(ft.In(i), map[reflect.Type]bool{})
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// build must be called with c.mu held.
func (c *Container) build(t reflect.Type, seen map[reflect.Type]bool) (reflect.Value, error) {
	if v, ok := c.instances[t]; ok {
		return v, nil
	}
	prov, ok := c.prov[t]
	if !ok && t.Kind() == reflect.Interface {
		for pt, p := range c.prov {
			if pt.Implements(t) {
				prov, ok = p, true
				break
			}
		}
	}
	if !ok {
		return reflect.Value{}, fmt.Errorf("container: no provider for %v", t)
	}
	if seen[t] {
		return reflect.Value{}, fmt.Errorf("container: cyclic dependency for %v", t)
	}
	seen[t] = true
	defer delete(seen, t)

	ft := prov.fn.Type()
	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		dep, err := c.build(ft.In(i), seen)
		if err != nil {
			return reflect.Value{}, err
		}
		args[i] = dep
	}
	outs := prov.fn.Call(args)
	if len(outs) == 2 && !outs[1].IsNil() {
		return reflect.Value{}, fmt.Errorf("container: build %v: %w", t, outs[1].Interface().(error))
	}
	res := outs[0]
	if res.Type() != t {
		// interface request satisfied by a concrete provider
		conv := reflect.New(t).Elem()
		conv.Set(res)
		res = conv
	}
	if prov.singleton {
		c.instances[t] = res
	}
	return res, nil
}
