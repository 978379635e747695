package snowflake

const (
	timestampBits = 41
	machineIDBits = 10
	sequenceBits  = 12

	// MaxMachineID is the largest machine id that fits the layout (1023).
	MaxMachineID = (1 << machineIDBits) - 1
	// MaxSequence is the largest per-millisecond sequence value (4095).
	MaxSequence = (1 << sequenceBits) - 1
	// MaxTimestamp is the largest epoch-relative millisecond value.
	MaxTimestamp = (1 << timestampBits) - 1

	machineIDShift = sequenceBits
	timestampShift = sequenceBits + machineIDBits

	// DefaultEpoch is 2021-01-01T00:00:00Z in unix milliseconds.
	DefaultEpoch int64 = 1609459200000
)

// Parts holds the decoded fields of an identifier.
type Parts struct {
	TimestampMs int64 // absolute unix ms
	MachineID   int64
	Sequence    int64
}

// Compose packs epoch-relative milliseconds, machine id and sequence into an id.
func Compose(elapsed, machineID, sequence int64) int64 {
	return (elapsed << timestampShift) | (machineID << machineIDShift) | sequence
}

// Decompose splits id into its fields, adding epoch back to the timestamp.
func Decompose(id, epoch int64) Parts {
	return Parts{
		TimestampMs: (id>>timestampShift)&MaxTimestamp + epoch,
		MachineID:   (id >> machineIDShift) & MaxMachineID,
		Sequence:    id & MaxSequence,
	}
}
