package dynamo

import (
	"sync"

	"github.com/san-kum/curvesim/internal/particle"
)

// GenerationPool recycles particle slices of one length between steps.
type GenerationPool struct {
	pool sync.Pool
	size int
}

func NewGenerationPool(size int) *GenerationPool {
	return &GenerationPool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				ps := make([]particle.Particle, size)
				return &ps
			},
		},
	}
}

func (p *GenerationPool) Get() []particle.Particle {
	return *p.pool.Get().(*[]particle.Particle)
}

// Put returns ps to the pool. Slices of another length are dropped.
func (p *GenerationPool) Put(ps []particle.Particle) {
	if len(ps) != p.size {
		return
	}
	clear(ps)
	p.pool.Put(&ps)
}

func (p *GenerationPool) GetAndCopy(src []particle.Particle) []particle.Particle {
	dst := p.Get()
	copy(dst, src)
	return dst
}
