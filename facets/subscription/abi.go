package subscription

import diamond "github.com/hashleap/diamond"

// ABIJSON is the SubscriptionFacet interface
var ABIJSON = []byte(`[
	{"inputs":[{"name":"fee","type":"uint256"},{"name":"autoRenew","type":"bool"},{"name":"duration","type":"uint16"},{"name":"paymentInterval","type":"uint16"},{"name":"title","type":"bytes32"}],"name":"createPlan","outputs":[{"name":"planId","type":"uint256"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"}],"name":"stopPlan","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"},{"name":"token","type":"address"}],"name":"subscribe","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"},{"name":"token","type":"address"},{"name":"planOwner","type":"address"}],"name":"subscribe","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"},{"name":"token","type":"address"},{"name":"subscriber","type":"address"}],"name":"chargeFee","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"},{"name":"token","type":"address"},{"name":"subscriber","type":"address"}],"name":"chargeFeeBySubscriptionOwner","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"}],"name":"renewSubscription","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"}],"name":"cancelSubscription","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"},{"name":"subscriber","type":"address"}],"name":"forcedCancellation","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"owner","type":"address"}],"name":"pauseSubscriptionOwner","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"owner","type":"address"}],"name":"restoreSubscriptionOwner","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"owner","type":"address"}],"name":"removeSubscriptionOwner","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"fee","type":"uint8"}],"name":"setBaseContractFee","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"getBaseContractFee","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"fee","type":"uint8"}],"name":"setProtocolFee","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"getProtocolFee","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"minDuration","type":"uint16"},{"name":"maxDuration","type":"uint16"}],"name":"setDurationBounds","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"getDurationBounds","outputs":[{"name":"minDuration","type":"uint16"},{"name":"maxDuration","type":"uint16"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"grace","type":"uint32"}],"name":"setChargeGrace","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"getChargeGrace","outputs":[{"name":"","type":"uint32"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transferBalance","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"token","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transferERC20Balance","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"nativeBalance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"token","type":"address"}],"name":"erc20Balance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"token","type":"address"}],"name":"getProtocolRevenue","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"}],"name":"getPlan","outputs":[{"name":"owner","type":"address"},{"name":"fee","type":"uint256"},{"name":"autoRenew","type":"bool"},{"name":"duration","type":"uint16"},{"name":"paymentInterval","type":"uint16"},{"name":"title","type":"bytes32"},{"name":"active","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getPlanCount","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"owner","type":"address"}],"name":"getPlansByOwner","outputs":[{"name":"","type":"uint256[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"}],"name":"getSubscribers","outputs":[{"name":"","type":"address[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"},{"name":"subscriber","type":"address"}],"name":"getSubscription","outputs":[{"name":"token","type":"address"},{"name":"start","type":"uint256"},{"name":"lastCharge","type":"uint256"},{"name":"active","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"}],"name":"isPlanActive","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"owner","type":"address"},{"name":"planId","type":"uint256"}],"name":"isPlanActiveForOwner","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"planId","type":"uint256"},{"name":"subscriber","type":"address"}],"name":"isPlanSubscribed","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"owner","type":"address"}],"name":"isSubscriptionOwnerPaused","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"owner","type":"address"}],"name":"isSubscriptionOwnerblackListed","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},

	{"anonymous":false,"inputs":[{"indexed":true,"name":"planId","type":"uint256"},{"indexed":true,"name":"owner","type":"address"},{"indexed":false,"name":"fee","type":"uint256"},{"indexed":false,"name":"autoRenew","type":"bool"},{"indexed":false,"name":"duration","type":"uint16"},{"indexed":false,"name":"paymentInterval","type":"uint16"},{"indexed":false,"name":"title","type":"bytes32"}],"name":"NewPlan","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"planId","type":"uint256"},{"indexed":true,"name":"owner","type":"address"}],"name":"PlanStopped","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"planId","type":"uint256"},{"indexed":true,"name":"subscriber","type":"address"},{"indexed":false,"name":"token","type":"address"},{"indexed":false,"name":"amount","type":"uint256"},{"indexed":false,"name":"protocolFee","type":"uint256"},{"indexed":false,"name":"timestamp","type":"uint256"}],"name":"ChargeSuccess","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"planId","type":"uint256"},{"indexed":true,"name":"subscriber","type":"address"},{"indexed":false,"name":"timestamp","type":"uint256"}],"name":"SubscriptionRenewed","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"planId","type":"uint256"},{"indexed":true,"name":"subscriber","type":"address"},{"indexed":false,"name":"forced","type":"bool"}],"name":"SubscriptionCancelled","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"owner","type":"address"},{"indexed":false,"name":"paused","type":"bool"},{"indexed":false,"name":"blacklisted","type":"bool"}],"name":"SubscriptionOwnerStatusChanged","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":false,"name":"previousFee","type":"uint8"},{"indexed":false,"name":"newFee","type":"uint8"}],"name":"BaseContractFeeUpdated","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"token","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"amount","type":"uint256"}],"name":"BalanceWithdrawn","type":"event"},

	{"inputs":[],"name":"PlanNotFound","type":"error"},
	{"inputs":[],"name":"NotSubscriptionOwner","type":"error"},
	{"inputs":[],"name":"PausedSubscriptionOwner","type":"error"},
	{"inputs":[],"name":"BlockedSubscriptionOwner","type":"error"},
	{"inputs":[],"name":"InvalidDuration","type":"error"},
	{"inputs":[],"name":"ZeroAddressTransfer","type":"error"}
]`)

// InitializerABIJSON is the facet initializer run through diamondCut
var InitializerABIJSON = []byte(`[
	{"inputs":[{"name":"minDuration","type":"uint16"},{"name":"maxDuration","type":"uint16"},{"name":"chargeGrace","type":"uint32"},{"name":"baseContractFee","type":"uint8"}],"name":"init","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`)

var (
	// ABI is the parsed SubscriptionFacet interface
	ABI = diamond.MustParseABI(ABIJSON)

	// InitializerABI is the parsed initializer interface
	InitializerABI = diamond.MustParseABI(InitializerABIJSON)
)
