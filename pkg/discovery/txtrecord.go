package discovery

import (
	"fmt"
	"sort"
	"strings"
)

// EncodeTXT builds TXT records for info.
func EncodeTXT(info *DeviceInfo) TXTRecordMap {
	version := info.Version
	if version == "" {
		version = ProtocolVersion
	}
	txt := TXTRecordMap{
		TXTKeyVersion: version,
	}
	if info.Ack != "" {
		txt[TXTKeyAck] = info.Ack
	}
	if info.Model != "" {
		txt[TXTKeyModel] = info.Model
	}
	if info.Serial != "" {
		txt[TXTKeySerial] = info.Serial
	}
	return txt
}

// DecodeTXT parses TXT records into a DeviceInfo. Only ver is required.
func DecodeTXT(txt TXTRecordMap) (*DeviceInfo, error) {
	version, ok := txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	if version == "" {
		return nil, fmt.Errorf("%w: empty %s", ErrInvalidTXTRecord, TXTKeyVersion)
	}
	return &DeviceInfo{
		Version: version,
		Ack:     txt[TXTKeyAck],
		Model:   txt[TXTKeyModel],
		Serial:  txt[TXTKeySerial],
	}, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyInstanceName
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
