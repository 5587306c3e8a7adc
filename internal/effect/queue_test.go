package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/quantum-dungeon/internal/id"
)

func TestQueueFIFO(t *testing.T) {
	var q Queue
	q.Push(GainMoves{Count: 1})
	q.PushAll([]Effect{Portal{}, OpenTiles{Count: 2}})
	require.Equal(t, 3, q.Len())

	var kinds []Kind
	for {
		e, ok := q.Pop()
		if !ok {
			break
		}
		kinds = append(kinds, e.Kind())
	}
	assert.Equal(t, []Kind{KindGainMoves, KindPortal, KindOpenTiles}, kinds)
	assert.Zero(t, q.Len())
}

func TestBufferAndSinkFunc(t *testing.T) {
	var buf Buffer
	var s Sink = &buf
	s.Push(Destroy{Item: id.ID{Index: 1, Gen: 1}})
	assert.Len(t, buf.Effects, 1)

	var got []Effect
	s = SinkFunc(func(e Effect) { got = append(got, e) })
	s.Push(Portal{})
	assert.Equal(t, []Effect{Portal{}}, got)
}

func TestMessages(t *testing.T) {
	item := id.ID{Index: 2, Gen: 1}
	assert.Equal(t, "item 2:1 destroyed", Destroy{Item: item}.Message())
	assert.Equal(t, "item 2:1 consumed", Destroy{Item: item, Consume: true}.Message())
	assert.Contains(t, Bonus{Target: item, Stats: map[string]int{"damage": 2}}.Message(), "temporary")
	assert.Contains(t, Bonus{Target: item, Permanent: true}.Message(), "permanent")
}
