package loader

import (
	"fmt"

	"GoQuestionsAI/app/vectordb"
)

type FlushPolicy string

const (
	// FlushLegacy compares the counter before incrementing it, so every full
	// batch carries threshold+1 objects.
	FlushLegacy FlushPolicy = "legacy"
	// FlushExact flushes as soon as the batch holds threshold objects.
	FlushExact FlushPolicy = "exact"
)

func ParseFlushPolicy(s string) (FlushPolicy, error) {
	switch FlushPolicy(s) {
	case "", FlushLegacy:
		return FlushLegacy, nil
	case FlushExact:
		return FlushExact, nil
	}
	return "", fmt.Errorf("unknown flush policy %q", s)
}

// BatchCapacity is the size of a full batch under policy.
func BatchCapacity(threshold int, policy FlushPolicy) int {
	if policy == FlushExact {
		return threshold
	}
	return threshold + 1
}

type batcher struct {
	threshold int
	policy    FlushPolicy
	counter   int
	objects   []vectordb.Object
}

func newBatcher(threshold int, policy FlushPolicy) *batcher {
	return &batcher{
		threshold: threshold,
		policy:    policy,
		objects:   make([]vectordb.Object, 0, BatchCapacity(threshold, policy)),
	}
}

// add appends o and reports whether the batch is due for submission.
func (b *batcher) add(o vectordb.Object) bool {
	b.objects = append(b.objects, o)
	if b.policy == FlushExact {
		b.counter++
		return b.counter == b.threshold
	}
	due := b.counter == b.threshold
	b.counter++
	return due
}

// take hands over the pending objects and starts an empty batch.
func (b *batcher) take() []vectordb.Object {
	out := b.objects
	b.objects = make([]vectordb.Object, 0, BatchCapacity(b.threshold, b.policy))
	b.counter = 0
	return out
}

func (b *batcher) len() int {
	return len(b.objects)
}
