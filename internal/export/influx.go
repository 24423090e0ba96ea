// Package export sends the consolidated dataset to InfluxDB/VictoriaMetrics.
package export

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/tedpearson/eeg-emotion/internal/config"
	"github.com/tedpearson/eeg-emotion/internal/ingest"
)

// Measurement is the name every point is written under.
const Measurement = "eeg"

// Epoch is the timestamp of the first sample of every recording.
var Epoch = time.Unix(0, 0).UTC()

// PointWriter accepts points; api.WriteAPI satisfies it.
type PointWriter interface {
	WritePoint(point *write.Point)
}

type InfluxWriter struct {
	client influxdb2.Client
	api    PointWriter
	rate   float64
}

func NewInfluxWriter(cfg config.InfluxConfig) *InfluxWriter {
	client := influxdb2.NewClient(cfg.Host, cfg.AuthToken)
	return &InfluxWriter{
		client: client,
		api:    client.WriteAPI(cfg.Org, cfg.Bucket),
		rate:   cfg.SampleRateHz,
	}
}

// Close flushes pending points and closes the client.
func (i *InfluxWriter) Close() {
	i.client.Close()
}

// WriteDataset writes one point per row and returns the number written.
func (i *InfluxWriter) WriteDataset(ds *ingest.Dataset) int {
	return WritePoints(i.api, ds, i.rate)
}

// WritePoints converts every dataset row into a point. Rows of a recording
// are spaced 1/rate seconds apart starting at Epoch and tagged with the
// recording's subject, emotion and file so trials never overwrite each other.
func WritePoints(w PointWriter, ds *ingest.Dataset, rate float64) int {
	step := time.Duration(float64(time.Second) / rate)
	columns := ingest.ChannelColumns(ingest.Channels)
	count := 0
	for _, t := range ds.Tables {
		subject := strconv.Itoa(t.SubjectID)
		for r := 0; r < t.Rows(); r++ {
			p := influxdb2.NewPointWithMeasurement(Measurement).
				AddTag("subject_id", subject).
				AddTag("emotion", string(t.Emotion)).
				AddTag("recording", t.File).
				SetTime(Epoch.Add(step * time.Duration(r)))
			for c, v := range t.Samples.RawRowView(r) {
				p.AddField(columns[c], v)
			}
			w.WritePoint(p)
			count++
		}
	}
	return count
}
