package spotpayment

import diamond "github.com/hashleap/diamond"

// ABIJSON is the SpotPaymentFacet interface
var ABIJSON = []byte(`[
	{"inputs":[{"name":"recipient","type":"address"},{"name":"tokenAddress","type":"address"},{"name":"amount","type":"uint256"},{"name":"tokenType","type":"uint8"},{"name":"tags","type":"string[]"},{"name":"paymentRef","type":"string"}],"name":"transfer","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"name":"recipient","type":"address"},{"name":"tokenAddress","type":"address"},{"name":"amount","type":"uint256"},{"name":"tokenType","type":"uint8"},{"name":"tags","type":"string[]"},{"name":"paymentRef","type":"string"},{"name":"paymentType","type":"string"}],"name":"transfer","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"name":"symbol","type":"string"},{"name":"tokenAddress","type":"address"}],"name":"setTokenAddress","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"symbol","type":"string"}],"name":"getTokenAddress","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"tokenAddress","type":"address"}],"name":"getTotalTransferred","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"sender","type":"address"},{"indexed":true,"name":"recipient","type":"address"},{"indexed":false,"name":"tokenAddress","type":"address"},{"indexed":false,"name":"text","type":"string"},{"indexed":false,"name":"tags","type":"string[]"},{"indexed":false,"name":"amount","type":"uint256"},{"indexed":false,"name":"datetime","type":"uint256"},{"indexed":false,"name":"paymentRef","type":"string"},{"indexed":false,"name":"paymentType","type":"string"}],"name":"TransferSuccess","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":false,"name":"symbol","type":"string"},{"indexed":true,"name":"tokenAddress","type":"address"}],"name":"TokenAddressSet","type":"event"}
]`)

// ABI is the parsed SpotPaymentFacet interface
var ABI = diamond.MustParseABI(ABIJSON)
