// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exception

const IncorrectParamType = "5"
const IncorrectParamTypeMsg = "$param parameter should be $type"

const EmptyParameter = "6"
const EmptyParameterMsg = "Parameter $param should not be empty"

const InvalidParameterValue = "7"
const InvalidParameterValueMsg = "Value '$value' is not allowed for parameter $param"

const BadRequestBody = "8"
const BadRequestBodyMsg = "Failed to decode body"

const UserNotFound = "41"
const UserNotFoundMsg = "User with id $userId not found"

const DeletionSchedulingFailed = "42"
const DeletionSchedulingFailedMsg = "Failed to schedule deletion of user $userId"

const UserRowDeletionFailed = "43"
const UserRowDeletionFailedMsg = "Deletion of user $userId was scheduled, but the user row could not be removed"

const VerificationFailed = "44"
const VerificationFailedMsg = "Failed to verify deletion of user $userId"

const SweepAlreadyRunning = "45"
const SweepAlreadyRunningMsg = "Deferred deletion sweep is already running on another instance"

const SweepFailed = "46"
const SweepFailedMsg = "Deferred deletion sweep failed"

const ApiKeyNotFound = "6000"
const ApiKeyNotFoundMsg = "Api key not found"

const ApiKeyHeaderIsEmpty = "6001"
const ApiKeyHeaderIsEmptyMsg = "Header api-key is empty"
