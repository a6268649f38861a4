package hive

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var demoNamespace = uuid.MustParse("0b7d6a52-3f7e-4f0c-8d2b-9e1f4c6a5b30")

func demoID(name string) string {
	return uuid.NewSHA1(demoNamespace, []byte(name)).String()
}

// MemoryBackend is an in-memory heating service for demo mode and tests.
type MemoryBackend struct {
	mu       sync.Mutex
	products []Product
	err      error
}

// NewMemoryBackend returns a backend holding products.
func NewMemoryBackend(products []Product) *MemoryBackend {
	return &MemoryBackend{products: cloneProducts(products)}
}

// NewDemoBackend returns a backend with the demo home's heating products.
func NewDemoBackend() *MemoryBackend {
	return NewMemoryBackend(DemoProducts())
}

// Fail makes Products return err. A nil err clears the failure.
func (m *MemoryBackend) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Products returns a copy of the current products.
func (m *MemoryBackend) Products(_ context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return cloneProducts(m.products), nil
}

// SetState merges state into the product's state.
func (m *MemoryBackend) SetState(_ context.Context, productType, id string, state map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		p := &m.products[i]
		if p.ID != id || p.Type != productType {
			continue
		}
		if p.State == nil {
			p.State = make(map[string]any)
		}
		for k, v := range state {
			p.State[k] = v
		}
		return nil
	}
	return fmt.Errorf("product %s/%s not found", productType, id)
}

// DemoProducts returns the demo home's heating products.
func DemoProducts() []Product {
	return []Product{
		{
			ID:   demoID("heating"),
			Type: TypeHeating,
			State: map[string]any{
				"name": "Heating", "mode": "SCHEDULE", "target": 20.5,
			},
			Props: map[string]any{"temperature": 19.2, "online": true, "working": true},
		},
		{
			ID:    demoID("hotwater"),
			Type:  TypeHotWater,
			State: map[string]any{"name": "Hot Water", "mode": "SCHEDULE", "status": "OFF"},
			Props: map[string]any{"online": true},
		},
		{
			ID:    demoID("trv-bedroom"),
			Type:  TypeTRV,
			State: map[string]any{"name": "Bedroom Radiator", "mode": "MANUAL", "target": 18.0},
			Props: map[string]any{"temperature": 17.4, "online": true},
		},
		{
			ID:    demoID("motion-hall"),
			Type:  TypeMotionSensor,
			State: map[string]any{"name": "Hall Motion"},
			Props: map[string]any{"online": true, "motion": map[string]any{"status": false}},
		},
	}
}

func cloneProducts(in []Product) []Product {
	out := make([]Product, len(in))
	for i, p := range in {
		p.State = cloneMap(p.State)
		p.Props = cloneMap(p.Props)
		out[i] = p
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = cloneMap(nested)
		}
		out[k] = v
	}
	return out
}
