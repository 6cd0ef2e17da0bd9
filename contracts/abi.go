package contracts

import "github.com/nando-os/setprotocol-go/contract"

// Interface fragments shared by several contracts. Each is a JSON ABI array.
const (
	ownableABI = `[
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"transferOwnership","stateMutability":"nonpayable","inputs":[{"name":"newOwner","type":"address"}],"outputs":[]},
	{"type":"function","name":"renounceOwnership","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"event","name":"OwnershipTransferred","anonymous":false,"inputs":[{"indexed":true,"name":"previousOwner","type":"address"},{"indexed":true,"name":"newOwner","type":"address"}]}
]`

	authorizableABI = `[
	{"type":"function","name":"addAuthorizedAddress","stateMutability":"nonpayable","inputs":[{"name":"_authTarget","type":"address"}],"outputs":[]},
	{"type":"function","name":"removeAuthorizedAddress","stateMutability":"nonpayable","inputs":[{"name":"_authTarget","type":"address"}],"outputs":[]},
	{"type":"function","name":"removeAuthorizedAddressAtIndex","stateMutability":"nonpayable","inputs":[{"name":"_authTarget","type":"address"},{"name":"_index","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"authorized","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"authorities","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getAuthorizedAddresses","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"event","name":"AddressAuthorized","anonymous":false,"inputs":[{"indexed":true,"name":"authAddress","type":"address"},{"indexed":false,"name":"authorizedBy","type":"address"}]},
	{"type":"event","name":"AuthorizedAddressRemoved","anonymous":false,"inputs":[{"indexed":true,"name":"addressRemoved","type":"address"},{"indexed":false,"name":"authorizedBy","type":"address"}]}
]`

	erc20ABI = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"_owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"_from","type":"address"},{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"value","type":"uint256"}]},
	{"type":"event","name":"Approval","anonymous":false,"inputs":[{"indexed":true,"name":"owner","type":"address"},{"indexed":true,"name":"spender","type":"address"},{"indexed":false,"name":"value","type":"uint256"}]}
]`

	standardTokenMockCtorABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"initialAccount","type":"address"},{"name":"initialBalance","type":"uint256"},{"name":"_name","type":"string"},{"name":"_symbol","type":"string"},{"name":"_decimals","type":"uint256"}]}
]`

	setTokenABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"_factory","type":"address"},{"name":"_components","type":"address[]"},{"name":"_units","type":"uint256[]"},{"name":"_naturalUnit","type":"uint256"},{"name":"_name","type":"string"},{"name":"_symbol","type":"string"}]},
	{"type":"function","name":"issue","stateMutability":"nonpayable","inputs":[{"name":"quantity","type":"uint256"}],"outputs":[{"name":"success","type":"bool"}]},
	{"type":"function","name":"redeem","stateMutability":"nonpayable","inputs":[{"name":"quantity","type":"uint256"}],"outputs":[{"name":"success","type":"bool"}]},
	{"type":"function","name":"naturalUnit","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"factory","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getComponents","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"getUnits","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"event","name":"LogIssuance","anonymous":false,"inputs":[{"indexed":true,"name":"_sender","type":"address"},{"indexed":false,"name":"_quantity","type":"uint256"}]},
	{"type":"event","name":"LogRedemption","anonymous":false,"inputs":[{"indexed":true,"name":"_sender","type":"address"},{"indexed":false,"name":"_quantity","type":"uint256"}]}
]`

	setTokenFactoryABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[]},
	{"type":"function","name":"core","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"setCoreAddress","stateMutability":"nonpayable","inputs":[{"name":"_coreAddress","type":"address"}],"outputs":[]},
	{"type":"function","name":"create","stateMutability":"nonpayable","inputs":[{"name":"_components","type":"address[]"},{"name":"_units","type":"uint256[]"},{"name":"_naturalUnit","type":"uint256"},{"name":"_name","type":"string"},{"name":"_symbol","type":"string"}],"outputs":[{"name":"","type":"address"}]}
]`

	coreABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[]},
	{"type":"function","name":"vaultAddress","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"transferProxyAddress","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"validFactories","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"validSets","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"setVaultAddress","stateMutability":"nonpayable","inputs":[{"name":"_vaultAddress","type":"address"}],"outputs":[]},
	{"type":"function","name":"setTransferProxyAddress","stateMutability":"nonpayable","inputs":[{"name":"_transferProxyAddress","type":"address"}],"outputs":[]},
	{"type":"function","name":"enableFactory","stateMutability":"nonpayable","inputs":[{"name":"_factoryAddress","type":"address"}],"outputs":[]},
	{"type":"function","name":"disableFactory","stateMutability":"nonpayable","inputs":[{"name":"_factoryAddress","type":"address"}],"outputs":[]},
	{"type":"function","name":"create","stateMutability":"nonpayable","inputs":[{"name":"_factoryAddress","type":"address"},{"name":"_components","type":"address[]"},{"name":"_units","type":"uint256[]"},{"name":"_naturalUnit","type":"uint256"},{"name":"_name","type":"string"},{"name":"_symbol","type":"string"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"issue","stateMutability":"nonpayable","inputs":[{"name":"_setAddress","type":"address"},{"name":"_quantity","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"redeem","stateMutability":"nonpayable","inputs":[{"name":"_setAddress","type":"address"},{"name":"_quantity","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"deposit","stateMutability":"nonpayable","inputs":[{"name":"_tokenAddress","type":"address"},{"name":"_quantity","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"_tokenAddress","type":"address"},{"name":"_quantity","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"batchDeposit","stateMutability":"nonpayable","inputs":[{"name":"_tokenAddresses","type":"address[]"},{"name":"_quantities","type":"uint256[]"}],"outputs":[]},
	{"type":"function","name":"batchWithdraw","stateMutability":"nonpayable","inputs":[{"name":"_tokenAddresses","type":"address[]"},{"name":"_quantities","type":"uint256[]"}],"outputs":[]},
	{"type":"event","name":"SetTokenCreated","anonymous":false,"inputs":[{"indexed":true,"name":"_setTokenAddress","type":"address"},{"indexed":false,"name":"_factoryAddress","type":"address"},{"indexed":false,"name":"_components","type":"address[]"},{"indexed":false,"name":"_units","type":"uint256[]"},{"indexed":false,"name":"_naturalUnit","type":"uint256"},{"indexed":false,"name":"_name","type":"string"},{"indexed":false,"name":"_symbol","type":"string"}]}
]`

	vaultABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[]},
	{"type":"function","name":"getOwnerBalance","stateMutability":"view","inputs":[{"name":"_tokenAddress","type":"address"},{"name":"_owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

	transferProxyABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"_tokenAddress","type":"address"},{"name":"_quantity","type":"uint256"},{"name":"_from","type":"address"},{"name":"_to","type":"address"}],"outputs":[]}
]`

	whitelistABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"_initialAddresses","type":"address[]"}]},
	{"type":"function","name":"validAddresses","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"whiteList","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"addAddress","stateMutability":"nonpayable","inputs":[{"name":"_address","type":"address"}],"outputs":[]},
	{"type":"function","name":"removeAddress","stateMutability":"nonpayable","inputs":[{"name":"_address","type":"address"}],"outputs":[]},
	{"type":"event","name":"AddressAdded","anonymous":false,"inputs":[{"indexed":false,"name":"_address","type":"address"}]},
	{"type":"event","name":"AddressRemoved","anonymous":false,"inputs":[{"indexed":false,"name":"_address","type":"address"}]}
]`
)

// Interface tables, one per deployed contract.
var (
	AuthorizableABI      = contract.MustParseABI(ownableABI, authorizableABI)
	ERC20ABI             = contract.MustParseABI(erc20ABI)
	StandardTokenMockABI = contract.MustParseABI(erc20ABI, standardTokenMockCtorABI)
	SetTokenABI          = contract.MustParseABI(erc20ABI, setTokenABI)
	SetTokenFactoryABI   = contract.MustParseABI(ownableABI, authorizableABI, setTokenFactoryABI)
	CoreABI              = contract.MustParseABI(ownableABI, coreABI)
	VaultABI             = contract.MustParseABI(ownableABI, authorizableABI, vaultABI)
	TransferProxyABI     = contract.MustParseABI(ownableABI, authorizableABI, transferProxyABI)
	WhitelistABI         = contract.MustParseABI(ownableABI, whitelistABI)
)

// Contract names used in logs, metrics and errors.
const (
	NameAuthorizable      = "Authorizable"
	NameERC20             = "ERC20"
	NameStandardTokenMock = "StandardTokenMock"
	NameSetToken          = "SetToken"
	NameSetTokenFactory   = "SetTokenFactory"
	NameCore              = "Core"
	NameVault             = "Vault"
	NameTransferProxy     = "TransferProxy"
	NameWhitelist         = "Whitelist"
)
