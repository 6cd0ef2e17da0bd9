package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	internalmocks "github.com/nando-os/setprotocol-go/internal/mocks"
)

func testAccountAndConfig(t *testing.T) (*Account, *config) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	acc := &Account{
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PublicKey:  key.Public().(*ecdsa.PublicKey),
		ChainId:    1,
		Label:      "main",
		PrivateKey: key,
	}
	cfg := &config{chainId: 1, acounts: []*Account{acc}, rpcURL: "http://localhost:8545", v: newViper()}
	return acc, cfg
}

func newTestClient(backend EthClient, acc *Account, cfg *config) *client {
	logger, _ := test.NewNullLogger()
	return &client{
		client:   backend,
		chainId:  1,
		accounts: map[common.Address]*Account{acc.Address: acc},
		config:   cfg,
		logger:   logger,
	}
}

func TestNewClientWithBackend_VerifiesChainID(t *testing.T) {
	_, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("ChainID", mock.Anything).Return(big.NewInt(1), nil)

	logger, _ := test.NewNullLogger()
	c, err := NewClientWithBackend(context.Background(), mockClient, cfg, WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ChainID())
	assert.Same(t, mockClient, c.Backend())
	mockClient.AssertExpectations(t)
}

func TestNewClientWithBackend_ChainMismatch(t *testing.T) {
	_, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("ChainID", mock.Anything).Return(big.NewInt(5), nil)

	_, err := NewClientWithBackend(context.Background(), mockClient, cfg, WithLogger(logrus.New()))
	assert.ErrorIs(t, err, ErrChainMismatch)
}

func TestClient_Account(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	gc := newTestClient(&internalmocks.EthClient{}, acc, cfg)

	got, err := gc.Account(acc.Address)
	require.NoError(t, err)
	assert.Same(t, acc, got)

	_, err = gc.Account(common.HexToAddress("0x0000000000000000000000000000000000000009"))
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestClient_GetBalance(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	wantBalance := big.NewInt(42)
	mockClient.On("BalanceAt", mock.Anything, acc.Address, (*big.Int)(nil)).Return(wantBalance, nil)
	gc := newTestClient(mockClient, acc, cfg)

	bal, err := gc.GetBalance(context.Background(), acc.Address)
	assert.NoError(t, err)
	assert.Equal(t, wantBalance, bal)
	mockClient.AssertExpectations(t)
}

func TestClient_GetBalance_Error(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("BalanceAt", mock.Anything, acc.Address, (*big.Int)(nil)).Return(nil, errors.New("fail"))
	gc := newTestClient(mockClient, acc, cfg)

	_, err := gc.GetBalance(context.Background(), acc.Address)
	assert.Error(t, err)
	mockClient.AssertExpectations(t)
}

func TestClient_Close(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("Close").Return()
	gc := newTestClient(mockClient, acc, cfg)
	gc.Close()
	mockClient.AssertExpectations(t)
}

func TestClient_EstimateGasAndSetLimit_Simple(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(21000), nil)
	mockClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).Return(&types.Header{GasLimit: 30000000}, nil)
	gc := newTestClient(mockClient, acc, cfg)

	tx := &Transaction{From: acc.Address, To: &acc.Address, Data: []byte{}}
	err := gc.estimateGasAndSetLimit(context.Background(), tx)
	assert.NoError(t, err)
	// Default buffer for simple is 1.1, so expect 21000*1.1 = 23100
	assert.Equal(t, uint64(23100), tx.GasLimit)
	mockClient.AssertExpectations(t)
}

func TestClient_EstimateGasAndSetLimit_Complex(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(50000), nil)
	mockClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).Return(&types.Header{GasLimit: 30000000}, nil)
	gc := newTestClient(mockClient, acc, cfg)

	tx := &Transaction{From: acc.Address, To: &acc.Address, Data: []byte{1, 2, 3}}
	err := gc.estimateGasAndSetLimit(context.Background(), tx)
	assert.NoError(t, err)
	// Default buffer for complex is 1.2, so expect 50000*1.2 = 60000
	assert.Equal(t, uint64(60000), tx.GasLimit)
	mockClient.AssertExpectations(t)
}

func TestClient_EstimateGasAndSetLimit_Errors(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(0), errors.New("fail estimate"))
	gc := newTestClient(mockClient, acc, cfg)

	tx := &Transaction{From: acc.Address, To: &acc.Address}
	err := gc.estimateGasAndSetLimit(context.Background(), tx)
	assert.Error(t, err)
	mockClient.AssertExpectations(t)

	// gas limit too high for the block
	mockClient = &internalmocks.EthClient{}
	mockClient.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(10000000), nil)
	mockClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).Return(&types.Header{GasLimit: 12000000}, nil)
	gc.client = mockClient
	tx = &Transaction{From: acc.Address, To: &acc.Address}
	err = gc.estimateGasAndSetLimit(context.Background(), tx)
	assert.Error(t, err)
	mockClient.AssertExpectations(t)
}

func TestClient_CalculateOptimalFees_EIP1559(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	header := &types.Header{BaseFee: big.NewInt(100)}
	mockClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).Return(header, nil)
	gc := newTestClient(mockClient, acc, cfg)

	tx := &Transaction{From: acc.Address, To: &acc.Address}
	err := gc.calculateOptimalFees(context.Background(), tx)
	assert.NoError(t, err)
	assert.Equal(t, cfg.PriorityFeeMainnet(), tx.MaxPriorityFeePerGas)
	// MaxFeePerGas should be 2*baseFee + priorityFee
	expectedMaxFee := new(big.Int).Mul(header.BaseFee, big.NewInt(2))
	expectedMaxFee.Add(expectedMaxFee, cfg.PriorityFeeMainnet())
	assert.Equal(t, expectedMaxFee, tx.MaxFeePerGas)
	mockClient.AssertExpectations(t)
}

func TestClient_CalculateOptimalFees_KeepsCallerFeeCap(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).Return(&types.Header{BaseFee: big.NewInt(100)}, nil)
	gc := newTestClient(mockClient, acc, cfg)

	tx := &Transaction{From: acc.Address, To: &acc.Address, MaxFeePerGas: big.NewInt(5 * GWEI)}
	require.NoError(t, gc.calculateOptimalFees(context.Background(), tx))
	assert.Equal(t, big.NewInt(5*GWEI), tx.MaxFeePerGas)
	assert.Equal(t, cfg.PriorityFeeMainnet(), tx.MaxPriorityFeePerGas)

	// a cap below the default tip also caps the tip
	tx = &Transaction{From: acc.Address, To: &acc.Address, MaxFeePerGas: big.NewInt(150)}
	require.NoError(t, gc.calculateOptimalFees(context.Background(), tx))
	assert.Equal(t, big.NewInt(150), tx.MaxFeePerGas)
	assert.Equal(t, big.NewInt(150), tx.MaxPriorityFeePerGas)

	// a caller-set tip is kept and the cap is derived from it
	tx = &Transaction{From: acc.Address, To: &acc.Address, MaxPriorityFeePerGas: big.NewInt(7)}
	require.NoError(t, gc.calculateOptimalFees(context.Background(), tx))
	assert.Equal(t, big.NewInt(7), tx.MaxPriorityFeePerGas)
	assert.Equal(t, big.NewInt(207), tx.MaxFeePerGas)
	mockClient.AssertExpectations(t)
}

func TestClient_CalculateOptimalFees_Legacy(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).Return(&types.Header{BaseFee: nil}, nil)
	mockClient.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(12345), nil)
	gc := newTestClient(mockClient, acc, cfg)

	tx := &Transaction{From: acc.Address, To: &acc.Address}
	err := gc.calculateOptimalFees(context.Background(), tx)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(12345), tx.GasPrice)
	mockClient.AssertExpectations(t)
}

func TestClient_CalculateOptimalFees_ExplicitGasPrice(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	gc := newTestClient(mockClient, acc, cfg)

	tx := &Transaction{From: acc.Address, To: &acc.Address, GasPrice: big.NewInt(7)}
	err := gc.calculateOptimalFees(context.Background(), tx)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(7), tx.GasPrice)
	assert.Nil(t, tx.MaxFeePerGas)
	// no network round-trip when the caller fixed the price
	mockClient.AssertNotCalled(t, "HeaderByNumber", mock.Anything, mock.Anything)
}

func TestClient_CalculateOptimalFees_HeaderError(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).Return(nil, errors.New("fail header"))
	gc := newTestClient(mockClient, acc, cfg)

	tx := &Transaction{From: acc.Address, To: &acc.Address}
	err := gc.calculateOptimalFees(context.Background(), tx)
	assert.Error(t, err)
	mockClient.AssertExpectations(t)
}

func TestClient_CalculateOptimalFees_GasPriceError(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).Return(&types.Header{BaseFee: nil}, nil)
	mockClient.On("SuggestGasPrice", mock.Anything).Return(nil, errors.New("fail gas price"))
	gc := newTestClient(mockClient, acc, cfg)

	tx := &Transaction{From: acc.Address, To: &acc.Address}
	err := gc.calculateOptimalFees(context.Background(), tx)
	assert.Error(t, err)
	mockClient.AssertExpectations(t)
}

func TestClient_CalculateOptimalFees_MaxFeeTooHigh(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).Return(&types.Header{BaseFee: big.NewInt(1e18)}, nil)
	gc := newTestClient(mockClient, acc, cfg)

	tx := &Transaction{From: acc.Address, To: &acc.Address}
	err := gc.calculateOptimalFees(context.Background(), tx)
	assert.Error(t, err)
	mockClient.AssertExpectations(t)
}

func TestClient_GetTransactionReceipt_Success(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	to := common.HexToAddress("0x0000000000000000000000000000000000000002")
	signed, err := types.SignTx(
		types.NewTx(&types.LegacyTx{Nonce: 1, GasPrice: big.NewInt(1), Gas: 21000, To: &to}),
		types.LatestSignerForChainID(big.NewInt(1)), acc.PrivateKey)
	require.NoError(t, err)
	hash := signed.Hash()
	receipt := &types.Receipt{
		TxHash:      hash,
		Status:      1,
		BlockNumber: big.NewInt(123),
		GasUsed:     21000,
		Logs:        []*types.Log{},
	}
	mockClient.On("TransactionReceipt", mock.Anything, hash).Return(receipt, nil)
	mockClient.On("TransactionByHash", mock.Anything, hash).Return(signed, false, nil)
	gc := newTestClient(mockClient, acc, cfg)

	r, err := gc.GetTransactionReceipt(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, hash, r.TxHash)
	assert.Equal(t, uint64(123), r.BlockNumber)
	assert.Equal(t, acc.Address, r.From)
	assert.Equal(t, to, r.To)
	assert.True(t, r.Succeeded())
	mockClient.AssertExpectations(t)
}

func TestClient_GetTransactionReceipt_Error(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	hash := common.HexToHash("0xabc")
	mockClient.On("TransactionReceipt", mock.Anything, hash).Return(nil, errors.New("not found"))
	gc := newTestClient(mockClient, acc, cfg)

	_, err := gc.GetTransactionReceipt(context.Background(), hash)
	assert.Error(t, err)
	mockClient.AssertExpectations(t)
}

func TestClient_WaitForTransaction_ProviderErrorIsNotRetried(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	hash := common.HexToHash("0xabc")
	mockClient.On("TransactionReceipt", mock.Anything, hash).Return(nil, errors.New("connection refused")).Once()
	gc := newTestClient(mockClient, acc, cfg)

	_, err := gc.WaitForTransaction(context.Background(), hash)
	assert.ErrorContains(t, err, "connection refused")
	mockClient.AssertExpectations(t)
}

func TestClient_WaitForTransaction_ContextDone(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	hash := common.HexToHash("0xabc")
	mockClient.On("TransactionReceipt", mock.Anything, hash).Return(nil, ethereum.NotFound)
	gc := newTestClient(mockClient, acc, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gc.WaitForTransaction(ctx, hash)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_SignTransaction_EIP1559_Success(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("PendingNonceAt", mock.Anything, acc.Address).Return(uint64(7), nil)
	mockClient.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(21000), nil)
	header := &types.Header{GasLimit: 30000000, BaseFee: big.NewInt(100)}
	mockClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).Return(header, nil)
	gc := newTestClient(mockClient, acc, cfg)

	tx := &Transaction{
		From:  acc.Address,
		To:    &acc.Address,
		Value: big.NewInt(1e18),
		Data:  []byte{},
	}
	result, err := gc.SignTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, uint8(types.DynamicFeeTxType), result.Type())
	assert.Equal(t, uint64(7), result.Nonce())
	assert.Equal(t, uint64(23100), result.Gas())
	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1)), result)
	require.NoError(t, err)
	assert.Equal(t, acc.Address, from)
	mockClient.AssertExpectations(t)
}

func TestClient_SignTransaction_ContractCreation(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	mockClient.On("PendingNonceAt", mock.Anything, acc.Address).Return(uint64(0), nil)
	gc := newTestClient(mockClient, acc, cfg)

	tx := &Transaction{From: acc.Address, Data: []byte{0x60, 0x00}, GasLimit: 100000, GasPrice: big.NewInt(1)}
	result, err := gc.SignTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.Nil(t, result.To())
	assert.Equal(t, uint8(types.LegacyTxType), result.Type())
}

func TestClient_SignTransaction_UnknownSender(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	gc := newTestClient(&internalmocks.EthClient{}, acc, cfg)

	stranger := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	_, err := gc.SignTransaction(context.Background(), &Transaction{From: stranger, To: &stranger})
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestClient_SignTransaction_Errors(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	gc := newTestClient(mockClient, acc, cfg)

	// Nonce error
	mockClient.On("PendingNonceAt", mock.Anything, acc.Address).Return(uint64(0), errors.New("fail nonce")).Once()
	_, err := gc.SignTransaction(context.Background(), &Transaction{From: acc.Address, To: &acc.Address})
	assert.Error(t, err)
	mockClient.AssertExpectations(t)

	// Gas estimation error
	mockClient = &internalmocks.EthClient{}
	mockClient.On("PendingNonceAt", mock.Anything, acc.Address).Return(uint64(1), nil)
	mockClient.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(0), errors.New("fail gas")).Once()
	gc.client = mockClient
	_, err = gc.SignTransaction(context.Background(), &Transaction{From: acc.Address, To: &acc.Address})
	assert.Error(t, err)
	mockClient.AssertExpectations(t)

	// Fee error (header error)
	mockClient = &internalmocks.EthClient{}
	mockClient.On("PendingNonceAt", mock.Anything, acc.Address).Return(uint64(2), nil)
	mockClient.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(21000), nil)
	mockClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).Return(nil, errors.New("fail header"))
	gc.client = mockClient
	_, err = gc.SignTransaction(context.Background(), &Transaction{From: acc.Address, To: &acc.Address})
	assert.Error(t, err)
	mockClient.AssertExpectations(t)
}

func TestClient_SendTransaction(t *testing.T) {
	acc, cfg := testAccountAndConfig(t)
	mockClient := &internalmocks.EthClient{}
	to := common.HexToAddress("0x0000000000000000000000000000000000000002")
	signed, err := types.SignTx(
		types.NewTx(&types.LegacyTx{Nonce: 1, GasPrice: big.NewInt(1), Gas: 21000, To: &to}),
		types.LatestSignerForChainID(big.NewInt(1)), acc.PrivateKey)
	require.NoError(t, err)
	mockClient.On("SendTransaction", mock.Anything, signed).Return(nil)
	gc := newTestClient(mockClient, acc, cfg)

	receipt, err := gc.SendTransaction(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, signed.Hash(), receipt.TxHash)
	assert.Equal(t, uint64(0), receipt.Status)
	assert.Equal(t, acc.Address, receipt.From)
	assert.Equal(t, to, receipt.To)
}
