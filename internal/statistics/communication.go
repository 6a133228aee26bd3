package statistics

import "github.com/sanspareilsmyn/tracelens/internal/histogram"

// commBase is the shared part of communication statistics: they are
// accumulated in the column of the communication partner.
type commBase struct{ base }

func (c *commBase) CreateComms() bool { return true }

func (c *commBase) Partner(data *histogram.CalculateData) int {
	return data.Comm.Partner
}

func (c *commBase) sent(data *histogram.CalculateData) bool {
	return data.Comm.Kind.IsSend() && c.h.Limits().AcceptComm(data.Comm)
}

func (c *commBase) received(data *histogram.CalculateData) bool {
	return data.Comm.Kind.IsReceive() && c.h.Limits().AcceptComm(data.Comm)
}

type Sends struct{ commBase }

func (s *Sends) Name() string { return NameSends }

func (s *Sends) Execute(data *histogram.CalculateData) float64 {
	if !s.sent(data) {
		return 0
	}
	return 1
}

type Receives struct{ commBase }

func (s *Receives) Name() string { return NameReceives }

func (s *Receives) Execute(data *histogram.CalculateData) float64 {
	if !s.received(data) {
		return 0
	}
	return 1
}

type BytesSent struct{ commBase }

func (s *BytesSent) Name() string { return NameBytesSent }

func (s *BytesSent) Execute(data *histogram.CalculateData) float64 {
	if !s.sent(data) {
		return 0
	}
	return float64(data.Comm.Size)
}

type BytesReceived struct{ commBase }

func (s *BytesReceived) Name() string { return NameBytesReceived }

func (s *BytesReceived) Execute(data *histogram.CalculateData) float64 {
	if !s.received(data) {
		return 0
	}
	return float64(data.Comm.Size)
}

// AverageBytesSent is the mean size of the messages sent to each partner.
type AverageBytesSent struct {
	commBase
	counts cellCounter
}

func newAverageBytesSent() *AverageBytesSent {
	return &AverageBytesSent{counts: cellCounter{}}
}

func (s *AverageBytesSent) Name() string { return NameAverageBytesSent }

func (s *AverageBytesSent) Execute(data *histogram.CalculateData) float64 {
	if !s.sent(data) {
		return 0
	}
	s.counts.inc(data.Comm.Partner, data.Plane)
	return float64(data.Comm.Size)
}

func (s *AverageBytesSent) FinishRow(value float64, column, plane int) float64 {
	return s.counts.average(value, column, plane)
}

func (s *AverageBytesSent) Reset() { s.counts.reset() }
