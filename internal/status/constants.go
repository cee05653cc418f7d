// internal/status/constants.go
package status

// Connection Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per replicator.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the connection health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the code of the last poll error.
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the target has been unreachable.
const SlotSecondsInError = 2

// ---- HEADLINE STATE ----

// SlotModule holds the active game module id.
const SlotModule = 3

// SlotFieldID holds the current field id.
const SlotFieldID = 4

// SlotGameMoment holds the story progression counter.
const SlotGameMoment = 5

// SlotSpeed holds the game speed multiplier x100.
const SlotSpeed = 6

// SlotGilLow and SlotGilHigh hold the 32-bit gil count, low word first.
const SlotGilLow = 7
const SlotGilHigh = 8

// SlotBattleID holds the current battle id.
const SlotBattleID = 9

// Slot 10 is reserved.
const SlotReserved = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state before the first poll.
const HealthUnknown uint16 = 0

// HealthOK represents a connected target with a running game.
const HealthOK uint16 = 1

// HealthError represents an unreachable target.
const HealthError uint16 = 2

// HealthStale represents an attached process with no game module running.
const HealthStale uint16 = 3
