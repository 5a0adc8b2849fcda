package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
)

func TestDeviceInit_CreatesDeviceAndSession(t *testing.T) {
	// ARRANGE
	f := newFixture(t)
	project, _ := f.seedProject(t, "alice", "Demo")
	ctx := context.Background()
	occurred := time.Date(2025, 11, 12, 9, 30, 0, 0, time.UTC)

	// ACT
	device, err := f.devices.Init(ctx, project.ID, DeviceInit{
		InstanceID: 42,
		Patch: models.DevicePatch{
			Name:     models.Some("Pixel"),
			Platform: models.Some(models.PlatformAndroid),
		},
		ActualLogTime: &occurred,
	})

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, int64(42), device.InstanceID)
	assert.Equal(t, project.ID, device.ProjectID)
	assert.Equal(t, "Pixel", *device.Name)
	assert.Equal(t, models.PlatformAndroid, *device.Platform)
	require.NotNil(t, device.LastUpdated)
	assert.True(t, occurred.Equal(*device.LastUpdated))

	assert.Equal(t, int64(1), f.store.SessionCount(42))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.DeviceInits))
}

func TestDeviceInit_IdempotentWithOneSessionPerCall(t *testing.T) {
	// ARRANGE
	f := newFixture(t)
	project, _ := f.seedProject(t, "alice", "Demo")
	ctx := context.Background()
	in := DeviceInit{
		InstanceID: 7,
		Patch:      models.DevicePatch{Name: models.Some("Laptop"), Country: models.Some("DE")},
	}

	// ACT
	first, err := f.devices.Init(ctx, project.ID, in)
	require.NoError(t, err)
	second, err := f.devices.Init(ctx, project.ID, in)
	require.NoError(t, err)
	third, err := f.devices.Init(ctx, project.ID, in)
	require.NoError(t, err)

	// ASSERT
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, second.Name, third.Name)
	assert.Equal(t, first.Country, third.Country)

	assert.Equal(t, int64(3), f.store.SessionCount(7))
}

func TestDeviceInit_PresenceAwarePatch(t *testing.T) {
	// ARRANGE
	f := newFixture(t)
	project, _ := f.seedProject(t, "alice", "Demo")
	ctx := context.Background()
	_, err := f.devices.Init(ctx, project.ID, DeviceInit{
		InstanceID: 5,
		Patch: models.DevicePatch{
			Name:    models.Some("Phone"),
			Model:   models.Some("X1"),
			Country: models.Some("US"),
		},
	})
	require.NoError(t, err)

	// ACT
	device, err := f.devices.Init(ctx, project.ID, DeviceInit{
		InstanceID: 5,
		Patch: models.DevicePatch{
			Model:   models.Some("X2"),
			Country: models.Null[string](),
		},
	})

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, "Phone", *device.Name, "absent field is kept")
	assert.Equal(t, "X2", *device.Model, "present field is overwritten")
	assert.Nil(t, device.Country, "explicit null clears the field")
}

func TestDeviceInit_KeepsLastUpdatedWithoutOccurrenceTime(t *testing.T) {
	// ARRANGE
	f := newFixture(t)
	project, _ := f.seedProject(t, "alice", "Demo")
	ctx := context.Background()
	occurred := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	_, err := f.devices.Init(ctx, project.ID, DeviceInit{InstanceID: 9, ActualLogTime: &occurred})
	require.NoError(t, err)

	// ACT
	device, err := f.devices.Init(ctx, project.ID, DeviceInit{InstanceID: 9})

	// ASSERT
	require.NoError(t, err)
	require.NotNil(t, device.LastUpdated)
	assert.True(t, occurred.Equal(*device.LastUpdated))
}

func TestDeviceInit_SessionDefaultsToNow(t *testing.T) {
	// ARRANGE
	f := newFixture(t)
	project, _ := f.seedProject(t, "alice", "Demo")
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.devices.now = func() time.Time { return fixed }

	// ACT
	_, err := f.devices.Init(context.Background(), project.ID, DeviceInit{InstanceID: 3})
	require.NoError(t, err)

	// ASSERT
	sessions, err := f.reports.Sessions(context.Background(), instanceWindow(project.ID, 3, fixed))
	require.NoError(t, err)
	require.Len(t, sessions.Items, 1)
	assert.True(t, fixed.Equal(sessions.Items[0].ActualLogTime))
}

func TestDeviceInit_ForeignProjectNotFound(t *testing.T) {
	// ARRANGE
	f := newFixture(t)
	alice, _ := f.seedProject(t, "alice", "Demo")
	bob, _ := f.seedProject(t, "bob", "Demo")
	ctx := context.Background()
	_, err := f.devices.Init(ctx, alice.ID, DeviceInit{InstanceID: 11, Patch: models.DevicePatch{Name: models.Some("Alice's")}})
	require.NoError(t, err)

	// ACT
	_, err = f.devices.Init(ctx, bob.ID, DeviceInit{InstanceID: 11, Patch: models.DevicePatch{Name: models.Some("Bob's")}})

	// ASSERT
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	device, err := f.devices.Get(ctx, alice.ID, 11)
	require.NoError(t, err)
	assert.Equal(t, "Alice's", *device.Name)
	assert.Equal(t, int64(1), f.store.SessionCount(11), "the rejected init must not leave a session behind")
}

func TestDeviceInit_InvalidPlatform(t *testing.T) {
	f := newFixture(t)
	project, _ := f.seedProject(t, "alice", "Demo")

	_, err := f.devices.Init(context.Background(), project.ID, DeviceInit{
		InstanceID: 1,
		Patch:      models.DevicePatch{Platform: models.Some(models.Platform("symbian"))},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "platform", verr.Errors[0].Field)
}

func TestDeviceInit_ConcurrentCallsSameInstance(t *testing.T) {
	// ARRANGE
	f := newFixture(t)
	project, _ := f.seedProject(t, "alice", "Demo")
	ctx := context.Background()
	const calls = 8

	// ACT
	var wg sync.WaitGroup
	errs := make(chan error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.devices.Init(ctx, project.ID, DeviceInit{InstanceID: 100})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// ASSERT
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(calls), f.store.SessionCount(100))
}

func TestDeviceService_CRUD(t *testing.T) {
	// ARRANGE
	f := newFixture(t)
	project, _ := f.seedProject(t, "alice", "Demo")
	other, _ := f.seedProject(t, "bob", "Demo")
	ctx := context.Background()

	// ACT
	created, err := f.devices.Create(ctx, project.ID, 55, models.DevicePatch{Name: models.Some("Tablet")}, nil)
	require.NoError(t, err)
	_, dupErr := f.devices.Create(ctx, project.ID, 55, models.DevicePatch{}, nil)
	updated, err := f.devices.Update(ctx, project.ID, 55, models.DevicePatch{Platform: models.Some(models.PlatformIOS)})
	require.NoError(t, err)
	_, foreignErr := f.devices.Get(ctx, other.ID, 55)
	foreignDelete := f.devices.Delete(ctx, other.ID, 55)
	deleteErr := f.devices.Delete(ctx, project.ID, 55)

	// ASSERT
	assert.Equal(t, "Tablet", *created.Name)
	assert.ErrorIs(t, dupErr, repositories.ErrDuplicate)
	assert.Equal(t, "Tablet", *updated.Name)
	assert.Equal(t, models.PlatformIOS, *updated.Platform)
	assert.ErrorIs(t, foreignErr, repositories.ErrNotFound)
	assert.ErrorIs(t, foreignDelete, repositories.ErrNotFound)
	assert.NoError(t, deleteErr)
}
