package p1

// crc16 is CRC-16/ARC (polynomial 0x8005 reflected, zero init) as used by
// DSMR 4 and later for the telegram trailer.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b)
		for range 8 {
			if crc&1 != 0 {
				crc = crc>>1 ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
