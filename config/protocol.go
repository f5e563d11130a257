package config

import "github.com/rfswitch/rfswitch/internal/protocol"

// BuildProtocolTable turns a ProtocolConfig into a protocol.Table,
// optionally starting from the canonical 11-row table and layering any
// extra YAML-authored rows on top.
func (c ProtocolConfig) BuildProtocolTable() protocol.Table {
	var timings []protocol.Timing
	if c.UseCanonical {
		timings = append(timings, protocol.Canonical.Normal...)
		timings = append(timings, protocol.Canonical.Inverse...)
	}
	for _, row := range c.Extra {
		timings = append(timings, protocol.BuildTiming(
			row.ID, row.ClockUs, row.TolerancePercent,
			row.SynchA, row.SynchB,
			row.Data0A, row.Data0B, row.Data1A, row.Data1B,
			row.Inverse,
		))
	}
	return protocol.NewTable(timings)
}
