package ledger

type VipStatus string

const (
	VipBronze   VipStatus = "Bronze"
	VipSilver   VipStatus = "Silver"
	VipGold     VipStatus = "Gold"
	VipPlatinum VipStatus = "Platinum"
	VipDiamond  VipStatus = "Diamond"
)

// highest first
var vipTiers = []struct {
	min    int64
	status VipStatus
}{
	{min: 500_000, status: VipDiamond},
	{min: 250_000, status: VipPlatinum},
	{min: 100_000, status: VipGold},
	{min: 50_000, status: VipSilver},
}

// VipFor maps a balance to its tier.
func VipFor(balance int64) VipStatus {
	for _, t := range vipTiers {
		if balance >= t.min {
			return t.status
		}
	}

	return VipBronze
}
