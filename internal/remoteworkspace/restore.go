package remoteworkspace

import "encoding/json"

// MarshalRestorePayload serializes the persisted session-restore state
// (spec.md §6/§8) for storage outside the process.
func MarshalRestorePayload(p SessionRestorePayload) ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalRestorePayload reverses MarshalRestorePayload. Callers rely
// on Restore(save(S)) reproducing S exactly (spec.md §8): this is a
// plain round trip with no lossy normalization.
func UnmarshalRestorePayload(data []byte) (SessionRestorePayload, error) {
	var p SessionRestorePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return SessionRestorePayload{}, err
	}
	return p, nil
}
