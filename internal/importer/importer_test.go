package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pincode-backend/config"
	"pincode-backend/internal/model"
	"pincode-backend/internal/store"
)

const sampleCSV = `Unnamed: 0,OfficeNam,Pincode,Delivery,District,StateNam,Latitude,Longitude
0,Coimbatore H.O,641001,Delivery,Coimbatore,Tamil Nadu,11.0018,76.9628
1,R.S.Puram S.O,641002.0,Delivery,Coimbatore,Tamil Nadu,NA,
2,Broken,64100,Delivery,Coimbatore,Tamil Nadu,,
3,Ganapathy S.O, 641 006 ,Non-Delivery,Coimbatore,Tamil Nadu,11.04,76.97
`

func newStore(t *testing.T) store.Store {
	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "import.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.PostalCode{}))
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})
	return store.NewGormStore(gormDB)
}

func writeCSV(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "postal.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	codes, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, codes, 3)

	assert.Equal(t, "641001", codes[0].Pincode)
	assert.Equal(t, "Coimbatore H.O", codes[0].PostOffice)
	assert.Equal(t, "Tamil Nadu", codes[0].State)
	require.NotNil(t, codes[0].Latitude)
	assert.InDelta(t, 11.0018, *codes[0].Latitude, 1e-9)
	require.NotNil(t, codes[0].Longitude)
	assert.InDelta(t, 76.9628, *codes[0].Longitude, 1e-9)

	assert.Equal(t, "641002", codes[1].Pincode)
	assert.Nil(t, codes[1].Latitude)
	assert.Nil(t, codes[1].Longitude)

	assert.Equal(t, "641006", codes[2].Pincode)
	assert.Equal(t, "Non-Delivery", codes[2].Delivery)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("Pincode,OfficeNam\n641001,Coimbatore\n"))
	assert.ErrorContains(t, err, "Delivery")
}

func TestImportFile(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	path := writeCSV(t, sampleCSV)

	n, err := ImportFile(ctx, s, path)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	// Running it again inserts nothing and keeps edits made in between.
	require.NoError(t, s.UpsertPostalCode(ctx, &model.PostalCode{
		Pincode: "641001", PostOffice: "Edited", Delivery: "Delivery", District: "Coimbatore", State: "Tamil Nadu",
	}))
	n, err = ImportFile(ctx, s, path)
	require.NoError(t, err)
	assert.Zero(t, n)

	pc, err := s.GetPostalCode(ctx, "641001")
	require.NoError(t, err)
	assert.Equal(t, "Edited", pc.PostOffice)

	_, err = ImportFile(ctx, s, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestScheduler(t *testing.T) {
	ctx := context.Background()

	t.Run("Disabled without a path", func(t *testing.T) {
		sched, err := NewScheduler(newStore(t), config.ImportConfig{})
		require.NoError(t, err)
		assert.NoError(t, sched.Start(ctx))
		sched.Stop()
	})

	t.Run("Imports at startup", func(t *testing.T) {
		s := newStore(t)
		sched, err := NewScheduler(s, config.ImportConfig{
			CSVPath:  writeCSV(t, sampleCSV),
			Schedule: "0 3 * * *",
			Timezone: "Asia/Kolkata",
		})
		require.NoError(t, err)
		require.NoError(t, sched.Start(ctx))
		defer sched.Stop()

		_, err = s.GetPostalCode(ctx, "641006")
		assert.NoError(t, err)
	})

	t.Run("Bad schedule", func(t *testing.T) {
		sched, err := NewScheduler(newStore(t), config.ImportConfig{
			CSVPath:  writeCSV(t, sampleCSV),
			Schedule: "every day",
		})
		require.NoError(t, err)
		assert.Error(t, sched.Start(ctx))
	})

	t.Run("Bad timezone", func(t *testing.T) {
		_, err := NewScheduler(newStore(t), config.ImportConfig{Timezone: "Mars/Olympus"})
		assert.Error(t, err)
	})
}
