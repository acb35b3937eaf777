package sgclient_test

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/sgsync/sgclient"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestIDMap(t *testing.T) {
	m := sgclient.NewIDMap()
	remotes := []int64{42, 7, 1000, 3}
	for i, r := range remotes {
		assert.NoError(t, m.Add(r, int64(i)))
	}
	expect.EQ(t, m.Len(), 4)
	for i, r := range remotes {
		local, ok := m.Local(r)
		expect.True(t, ok)
		expect.EQ(t, local, int64(i))
		remote, ok := m.Remote(int64(i))
		expect.True(t, ok)
		expect.EQ(t, remote, r)
	}
	_, ok := m.Local(8)
	expect.False(t, ok)
	_, ok = m.Remote(4)
	expect.False(t, ok)
	_, ok = m.Remote(-1)
	expect.False(t, ok)

	// Remote ids map to exactly one local id.
	err := m.Add(7, 4)
	expect.True(t, errors.Is(errors.Exists, err), "err %v", err)
	// Local ids are contiguous.
	err = m.Add(8, 5)
	expect.True(t, errors.Is(errors.Precondition, err), "err %v", err)
	expect.EQ(t, m.Len(), 4)
}
