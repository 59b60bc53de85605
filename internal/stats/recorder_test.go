package stats

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/naiveq22/internal/testutil"
)

var handlerNames = []string{"on_insert_CUSTOMER", "on_insert_ORDERS", "on_delete_CUSTOMER", "on_delete_ORDERS"}

func TestTrackAccumulates(t *testing.T) {
	clock := testutil.NewStepClock(250 * time.Microsecond)
	rec := NewRecorder(handlerNames, WithClock(clock.Now))

	for i := 0; i < 4; i++ {
		func() {
			defer rec.Track("on_insert_ORDERS", rec.Start())
		}()
	}

	assert.Equal(t, time.Millisecond, rec.Elapsed("on_insert_ORDERS"))
	assert.Equal(t, int64(4), rec.Calls("on_insert_ORDERS"))
	assert.Zero(t, rec.Elapsed("on_insert_CUSTOMER"))
}

func TestTrackRecordsOnPanic(t *testing.T) {
	clock := testutil.NewStepClock(time.Millisecond)
	rec := NewRecorder(handlerNames, WithClock(clock.Now))

	assert.Panics(t, func() {
		defer rec.Track("on_delete_CUSTOMER", rec.Start())
		panic("boom")
	})
	assert.Equal(t, time.Millisecond, rec.Elapsed("on_delete_CUSTOMER"))
}

func TestWriteHandlersFormatAndOrder(t *testing.T) {
	clock := testutil.NewStepClock(1500 * time.Millisecond)
	rec := NewRecorder(handlerNames, WithClock(clock.Now))
	rec.Track("on_delete_ORDERS", rec.Start())

	var buf bytes.Buffer
	require.NoError(t, rec.WriteHandlers(&buf))
	assert.Equal(t,
		"h,on_insert_CUSTOMER,0.000000\n"+
			"h,on_insert_ORDERS,0.000000\n"+
			"h,on_delete_CUSTOMER,0.000000\n"+
			"h,on_delete_ORDERS,1.500000\n",
		buf.String())
}

func TestUnregisteredHandlerIsAppended(t *testing.T) {
	rec := NewRecorder([]string{"a"})
	rec.Track("b", rec.Start())
	assert.Equal(t, []string{"a", "b"}, rec.Handlers())
}

func TestWriteMemory(t *testing.T) {
	rec := NewRecorder(nil)
	var buf bytes.Buffer

	err := rec.WriteMemory(&buf,
		Footprint{Name: "ORDERS", Fixed: 40, PerElement: 100, Count: 3},
		Footprint{Name: "q", Fixed: 32, PerElement: 24, Count: 0},
	)
	require.NoError(t, err)
	assert.Equal(t, "m,ORDERS,340\nm,q,32\n", buf.String())
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0.000001", FormatSeconds(time.Microsecond))
	assert.Equal(t, "2.000000", FormatSeconds(2*time.Second))
}
